// Package memstore holds in-memory implementations of the storage ports,
// used by service and HTTP tests. They follow the Mongo repositories'
// contracts, including unique indexes.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/repo"
)

type Store struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]domain.User
	companies map[primitive.ObjectID]domain.Company
	jobs      map[primitive.ObjectID]domain.Job
	apps      map[primitive.ObjectID]domain.JobApplication

	companyLookups int

	// Err* fields, when set, are returned by the matching method.
	ErrUpdateResume      error
	ErrCreateApplication error
	ErrFind              error

	// SkipExistsCheck makes ApplicationExists report false, as a racing request would see it.
	SkipExistsCheck bool
}

func New() *Store {
	return &Store{
		users:     map[primitive.ObjectID]domain.User{},
		companies: map[primitive.ObjectID]domain.Company{},
		jobs:      map[primitive.ObjectID]domain.Job{},
		apps:      map[primitive.ObjectID]domain.JobApplication{},
	}
}

// users

func (s *Store) FindUserByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ErrFind != nil {
		return nil, s.ErrFind
	}
	for _, u := range s.users {
		if u.ExternalID == externalID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) EnsureUser(_ context.Context, in *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ExternalID == in.ExternalID {
			u := u
			return &u, nil
		}
	}
	u := *in
	u.ID = primitive.NewObjectID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) UpdateUserResume(_ context.Context, id primitive.ObjectID, url, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ErrUpdateResume != nil {
		return s.ErrUpdateResume
	}
	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Resume, u.ResumeKey = url, key
	s.users[id] = u
	return nil
}

// UserCount is the number of stored users.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// companies

func (s *Store) CreateCompany(_ context.Context, c *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	for _, x := range s.companies {
		if x.Email == c.Email {
			return repo.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	s.companies[c.ID] = *c
	return nil
}

func (s *Store) FindCompanyByEmail(_ context.Context, email string) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range s.companies {
		if c.Email == email {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) FindCompanyByID(_ context.Context, id primitive.ObjectID) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companyLookups++
	c, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// CompanyLookups counts FindCompanyByID calls.
func (s *Store) CompanyLookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companyLookups
}
