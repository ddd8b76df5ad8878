package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/log"
	"github.com/tazhibayda/jobboard/internal/queue"
	"github.com/tazhibayda/jobboard/internal/repo"
	"github.com/tazhibayda/jobboard/internal/security"
)

const maxLogoBytes = 2 << 20

type CompanyDeps struct {
	Companies CompanyStore
	Jobs      JobStore
	Apps      ApplicationStore
	Users     UserStore
	Tokens    TokenIssuer
	Objects   ObjectStore
	Index     JobIndex // optional
	Events    *Events  // optional
	Log       *zap.Logger
}

// CompanyService holds everything a company account can do.
type CompanyService struct {
	CompanyDeps
	now func() time.Time
}

func NewCompanyService(d CompanyDeps) *CompanyService {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &CompanyService{CompanyDeps: d, now: time.Now}
}

// AuthResult is a company together with a fresh session token.
type AuthResult struct {
	Company *domain.Company
	Token   string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Logo     *Upload
}

func (s *CompanyService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, invalid("Missing Details")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("Invalid email")
	}
	if len(in.Password) < 8 {
		return nil, invalid("Password must be at least 8 characters")
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/company: hash: %w", err)
	}

	c := &domain.Company{Name: name, Email: email, PasswordHash: hash, CreatedAt: s.now().UTC()}
	var logoKey string
	if in.Logo != nil && in.Logo.Body != nil {
		if c.Image, logoKey, err = s.uploadLogo(ctx, in.Logo); err != nil {
			return nil, err
		}
	}

	if err := s.Companies.CreateCompany(ctx, c); err != nil {
		if logoKey != "" {
			_ = s.Objects.Delete(context.WithoutCancel(ctx), logoKey)
		}
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("service/company: create: %w", err)
	}

	tok, err := s.Tokens.Generate(c.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("service/company: token: %w", err)
	}
	log.WithDD(ctx, s.Log).Info("company registered", zap.String("company_id", c.ID.Hex()))
	return &AuthResult{Company: c, Token: tok}, nil
}

func (s *CompanyService) uploadLogo(ctx context.Context, up *Upload) (url, key string, err error) {
	ct := strings.ToLower(up.ContentType)
	if !strings.HasPrefix(ct, "image/") {
		return "", "", invalid("Logo must be an image")
	}
	if up.Size > maxLogoBytes {
		return "", "", invalid("Logo is too large")
	}
	key = "logos/" + uuid.NewString() + strings.ToLower(filepath.Ext(up.Filename))
	url, err = s.Objects.Upload(ctx, key, up.Body, ct)
	if err != nil {
		return "", "", fmt.Errorf("service/company: upload logo: %w", err)
	}
	return url, key, nil
}

func (s *CompanyService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	c, err := s.Companies.FindCompanyByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/company: find: %w", err)
	}
	if c == nil || !security.CheckPassword(c.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	tok, err := s.Tokens.Generate(c.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("service/company: token: %w", err)
	}
	return &AuthResult{Company: c, Token: tok}, nil
}

// CompanyByID loads the company a session token refers to.
func (s *CompanyService) CompanyByID(ctx context.Context, id string) (*domain.Company, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	c, err := s.Companies.FindCompanyByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("service/company: find %s: %w", id, err)
	}
	if c == nil {
		return nil, ErrCompanyNotFound
	}
	return c, nil
}

type JobInput struct {
	Title       string
	Description string
	Location    string
	Category    string
	Level       string
	Salary      int64
}

func (s *CompanyService) PostJob(ctx context.Context, company *domain.Company, in JobInput) (*domain.Job, error) {
	j := &domain.Job{
		CompanyID:   company.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Category:    strings.TrimSpace(in.Category),
		Level:       strings.TrimSpace(in.Level),
		Salary:      in.Salary,
		Visible:     true,
		Date:        s.now().UTC(),
	}
	if j.Title == "" || j.Description == "" || j.Location == "" || j.Category == "" || j.Level == "" {
		return nil, invalid("Missing Details")
	}
	if j.Salary < 0 {
		return nil, invalid("Salary must not be negative")
	}
	if err := s.Jobs.CreateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("service/company: post job: %w", err)
	}
	s.reindex(ctx, j)
	return j, nil
}

func (s *CompanyService) reindex(ctx context.Context, j *domain.Job) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexJob(ctx, *j); err != nil {
		log.WithDD(ctx, s.Log).Warn("index job", zap.String("job_id", j.ID.Hex()), zap.Error(err))
	}
}

func (s *CompanyService) ListJobs(ctx context.Context, company *domain.Company) ([]domain.CompanyJob, error) {
	out, err := s.Jobs.ListJobsByCompany(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("service/company: list jobs: %w", err)
	}
	if out == nil {
		out = []domain.CompanyJob{}
	}
	return out, nil
}

func (s *CompanyService) ListApplicants(ctx context.Context, company *domain.Company) ([]domain.ApplicantView, error) {
	out, err := s.Apps.ListApplicantsByCompany(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("service/company: list applicants: %w", err)
	}
	if out == nil {
		out = []domain.ApplicantView{}
	}
	return out, nil
}

// ChangeStatus sets the status of an application the company received.
func (s *CompanyService) ChangeStatus(ctx context.Context, company *domain.Company, appID, status string) (*domain.JobApplication, error) {
	if !domain.ValidStatus(status) {
		return nil, invalid("Invalid status")
	}
	oid, err := primitive.ObjectIDFromHex(appID)
	if err != nil {
		return nil, ErrApplicationNotFound
	}
	a, err := s.Apps.UpdateApplicationStatus(ctx, company.ID, oid, status)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("service/company: change status: %w", err)
	}
	s.publishStatus(ctx, company, a)
	return a, nil
}

func (s *CompanyService) publishStatus(ctx context.Context, company *domain.Company, a *domain.JobApplication) {
	if s.Events == nil {
		return
	}
	ev := queue.ApplicationStatusChanged{
		ApplicationID: a.ID.Hex(),
		CompanyName:   company.Name,
		Status:        a.Status,
	}
	if u, err := s.Users.FindUserByID(ctx, a.UserID); err == nil && u != nil {
		ev.UserEmail, ev.UserName = u.Email, u.Name
	}
	if j, err := s.Jobs.FindJobByID(ctx, a.JobID); err == nil && j != nil {
		ev.JobTitle = j.Title
	}
	s.Events.emit(ctx, queue.KeyStatusChanged, ev)
}

// ChangeVisibility toggles whether one of the company's jobs is listed publicly.
func (s *CompanyService) ChangeVisibility(ctx context.Context, company *domain.Company, jobID string) (*domain.Job, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	j, err := s.Jobs.ToggleJobVisibility(ctx, company.ID, oid)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("service/company: change visibility: %w", err)
	}
	s.reindex(ctx, j)
	return j, nil
}
