package service

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
)

// Find* methods return nil, nil when nothing matches. Updates of a missing
// document return repo.ErrNotFound; unique index violations return repo.ErrDuplicate.

type UserStore interface {
	FindUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	EnsureUser(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateUserResume(ctx context.Context, id primitive.ObjectID, url, key string) error
}

type CompanyStore interface {
	CreateCompany(ctx context.Context, c *domain.Company) error
	FindCompanyByEmail(ctx context.Context, email string) (*domain.Company, error)
	FindCompanyByID(ctx context.Context, id primitive.ObjectID) (*domain.Company, error)
}

type JobStore interface {
	CreateJob(ctx context.Context, j *domain.Job) error
	FindJobByID(ctx context.Context, id primitive.ObjectID) (*domain.Job, error)
	FindJobsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.JobListing, error)
	ListVisibleJobs(ctx context.Context) ([]domain.JobListing, error)
	SearchJobs(ctx context.Context, q string, limit int) ([]domain.JobListing, error)
	ListJobsByCompany(ctx context.Context, companyID primitive.ObjectID) ([]domain.CompanyJob, error)
	ToggleJobVisibility(ctx context.Context, companyID, jobID primitive.ObjectID) (*domain.Job, error)
}

type ApplicationStore interface {
	ApplicationExists(ctx context.Context, userID, jobID primitive.ObjectID) (bool, error)
	CreateApplication(ctx context.Context, a *domain.JobApplication) error
	ListApplicationsByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ApplicationView, error)
	ListApplicantsByCompany(ctx context.Context, companyID primitive.ObjectID) ([]domain.ApplicantView, error)
	UpdateApplicationStatus(ctx context.Context, companyID, appID primitive.ObjectID, status string) (*domain.JobApplication, error)
}

// ProfileSource looks up a user's profile at the identity provider.
type ProfileSource interface {
	Profile(ctx context.Context, externalID string) (domain.Identity, error)
}

type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type JobIndex interface {
	IndexJob(ctx context.Context, j domain.Job) error
	SearchJobIDs(ctx context.Context, q string, limit int) ([]string, error)
}

type TokenIssuer interface {
	Generate(companyID string) (string, error)
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
