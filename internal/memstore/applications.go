package memstore

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/repo"
)

func (s *Store) ApplicationExists(_ context.Context, userID, jobID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SkipExistsCheck {
		return false, nil
	}
	for _, a := range s.apps {
		if a.UserID == userID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateApplication(_ context.Context, a *domain.JobApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ErrCreateApplication != nil {
		return s.ErrCreateApplication
	}
	for _, x := range s.apps {
		if x.UserID == a.UserID && x.JobID == a.JobID {
			return repo.ErrDuplicate
		}
	}
	a.ID = primitive.NewObjectID()
	if a.Date.IsZero() {
		a.Date = time.Now().UTC()
	}
	s.apps[a.ID] = *a
	return nil
}

// jobSummary projects a stored job; callers hold mu.
func (s *Store) jobSummary(id primitive.ObjectID) *domain.JobSummary {
	j, ok := s.jobs[id]
	if !ok {
		return nil
	}
	return &domain.JobSummary{
		ID: j.ID, Title: j.Title, Description: j.Description, Location: j.Location,
		Category: j.Category, Level: j.Level, Salary: j.Salary,
	}
}

func (s *Store) ListApplicationsByUser(_ context.Context, userID primitive.ObjectID) ([]domain.ApplicationView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ApplicationView{}
	for _, a := range s.apps {
		if a.UserID != userID {
			continue
		}
		v := domain.ApplicationView{JobApplication: a, Job: s.jobSummary(a.JobID)}
		if c, ok := s.companies[a.CompanyID]; ok {
			v.Company = &domain.CompanySummary{ID: c.ID, Name: c.Name, Email: c.Email, Image: c.Image}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) ListApplicantsByCompany(_ context.Context, companyID primitive.ObjectID) ([]domain.ApplicantView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ApplicantView{}
	for _, a := range s.apps {
		if a.CompanyID != companyID {
			continue
		}
		v := domain.ApplicantView{JobApplication: a, Job: s.jobSummary(a.JobID)}
		if u, ok := s.users[a.UserID]; ok {
			v.User = &domain.ApplicantSummary{ID: u.ID, Name: u.Name, Image: u.Image, Resume: u.Resume}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, companyID, appID primitive.ObjectID, status string) (*domain.JobApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[appID]
	if !ok || a.CompanyID != companyID {
		return nil, repo.ErrNotFound
	}
	a.Status = status
	s.apps[appID] = a
	return &a, nil
}

// ApplicationCount is the number of stored applications.
func (s *Store) ApplicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.apps)
}
