package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/log"
	"github.com/tazhibayda/jobboard/internal/metrics"
	"github.com/tazhibayda/jobboard/internal/queue"
	"github.com/tazhibayda/jobboard/internal/repo"
)

type ApplicationService struct {
	apps      ApplicationStore
	jobs      JobStore
	companies CompanyStore
	events    *Events
	log       *zap.Logger
	now       func() time.Time
}

func NewApplicationService(apps ApplicationStore, jobs JobStore, companies CompanyStore, events *Events, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{apps: apps, jobs: jobs, companies: companies, events: events, log: logger, now: time.Now}
}

// Apply records that user applied to jobID. A user applies to a job at most once.
func (s *ApplicationService) Apply(ctx context.Context, user *domain.User, jobID string) (*domain.JobApplication, error) {
	a, err := s.apply(ctx, user, jobID)
	switch {
	case err == nil:
		metrics.Applications.WithLabelValues("applied").Inc()
	case errors.Is(err, ErrAlreadyApplied):
		metrics.Applications.WithLabelValues("already_applied").Inc()
	case errors.Is(err, ErrJobNotFound):
		metrics.Applications.WithLabelValues("job_not_found").Inc()
	default:
		metrics.Applications.WithLabelValues("error").Inc()
	}
	return a, err
}

func (s *ApplicationService) apply(ctx context.Context, user *domain.User, jobID string) (*domain.JobApplication, error) {
	jid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	exists, err := s.apps.ApplicationExists(ctx, user.ID, jid)
	if err != nil {
		return nil, fmt.Errorf("service/apply: check duplicate: %w", err)
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	job, err := s.jobs.FindJobByID(ctx, jid)
	if err != nil {
		return nil, fmt.Errorf("service/apply: find job %s: %w", jobID, err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	a := &domain.JobApplication{
		CompanyID: job.CompanyID,
		UserID:    user.ID,
		JobID:     job.ID,
		Status:    domain.StatusPending,
		Date:      s.now().UTC(),
	}
	if err := s.apps.CreateApplication(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("service/apply: insert: %w", err)
	}

	log.WithDD(ctx, s.log).Info("application created",
		zap.String("application_id", a.ID.Hex()),
		zap.String("job_id", job.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
	)
	s.publishCreated(ctx, a, job, user)
	return a, nil
}

func (s *ApplicationService) publishCreated(ctx context.Context, a *domain.JobApplication, job *domain.Job, user *domain.User) {
	if s.events == nil {
		return
	}
	ev := queue.ApplicationCreated{
		ApplicationID: a.ID.Hex(),
		JobID:         job.ID.Hex(),
		JobTitle:      job.Title,
		CompanyID:     job.CompanyID.Hex(),
		UserID:        user.ID.Hex(),
		UserName:      user.Name,
		UserEmail:     user.Email,
		Date:          a.Date,
	}
	if c, err := s.companies.FindCompanyByID(ctx, job.CompanyID); err == nil && c != nil {
		ev.CompanyEmail = c.Email
	}
	s.events.emit(ctx, queue.KeyApplicationCreated, ev)
}

// ListForUser returns the user's applications, newest first. No applications is
// an empty list, not an error.
func (s *ApplicationService) ListForUser(ctx context.Context, user *domain.User) ([]domain.ApplicationView, error) {
	out, err := s.apps.ListApplicationsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/applications: list %s: %w", user.ID.Hex(), err)
	}
	if out == nil {
		out = []domain.ApplicationView{}
	}
	return out, nil
}
