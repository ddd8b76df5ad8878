package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/memstore"
)

func seedCompany(t *testing.T, s *memstore.Store, name, email string) *domain.Company {
	t.Helper()
	c := &domain.Company{Name: name, Email: email, Image: "https://img/" + name + ".png"}
	require.NoError(t, s.CreateCompany(context.Background(), c))
	return c
}

func seedJob(t *testing.T, s *memstore.Store, companyID primitive.ObjectID, title string, visible bool) *domain.Job {
	t.Helper()
	j := &domain.Job{
		CompanyID: companyID, Title: title, Description: "desc", Location: "Remote",
		Category: "Programming", Level: "Senior", Salary: 1000, Visible: visible,
	}
	require.NoError(t, s.CreateJob(context.Background(), j))
	return j
}

func seedUser(t *testing.T, s *memstore.Store, externalID string) *domain.User {
	t.Helper()
	u, err := s.EnsureUser(context.Background(), &domain.User{ExternalID: externalID, Name: "Jane", Email: externalID + "@example.com"})
	require.NoError(t, err)
	return u
}
