package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/repo"
)

func (s *Store) CreateJob(_ context.Context, j *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = primitive.NewObjectID()
	if j.Date.IsZero() {
		j.Date = time.Now().UTC()
	}
	s.jobs[j.ID] = *j
	return nil
}

func (s *Store) FindJobByID(_ context.Context, id primitive.ObjectID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ErrFind != nil {
		return nil, s.ErrFind
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

// listing expands j; callers hold mu.
func (s *Store) listing(j domain.Job) domain.JobListing {
	l := domain.JobListing{Job: j}
	if c, ok := s.companies[j.CompanyID]; ok {
		l.Company = &domain.CompanySummary{ID: c.ID, Name: c.Name, Email: c.Email, Image: c.Image}
	}
	return l
}

func (s *Store) filterJobs(keep func(domain.Job) bool) []domain.JobListing {
	out := []domain.JobListing{}
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, s.listing(j))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	return out
}

func (s *Store) ListVisibleJobs(context.Context) ([]domain.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterJobs(func(j domain.Job) bool { return j.Visible }), nil
}

func (s *Store) FindJobsByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.filterJobs(func(j domain.Job) bool { return j.Visible && want[j.ID] }), nil
}

func (s *Store) SearchJobs(_ context.Context, q string, limit int) ([]domain.JobListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(q)
	out := s.filterJobs(func(j domain.Job) bool {
		return j.Visible && (strings.Contains(strings.ToLower(j.Title), q) ||
			strings.Contains(strings.ToLower(j.Category), q) ||
			strings.Contains(strings.ToLower(j.Location), q))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListJobsByCompany(_ context.Context, companyID primitive.ObjectID) ([]domain.CompanyJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.CompanyJob{}
	for _, j := range s.jobs {
		if j.CompanyID != companyID {
			continue
		}
		cj := domain.CompanyJob{Job: j}
		for _, a := range s.apps {
			if a.JobID == j.ID {
				cj.Applicants++
			}
		}
		out = append(out, cj)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	return out, nil
}

func (s *Store) ToggleJobVisibility(_ context.Context, companyID, jobID primitive.ObjectID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || j.CompanyID != companyID {
		return nil, repo.ErrNotFound
	}
	j.Visible = !j.Visible
	s.jobs[jobID] = j
	return &j, nil
}
