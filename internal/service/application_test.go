package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/helper"
	"github.com/tazhibayda/jobboard/internal/memstore"
	"github.com/tazhibayda/jobboard/internal/queue"
	"github.com/tazhibayda/jobboard/internal/repo"
	"github.com/tazhibayda/jobboard/internal/service"
)

func newApplications(store *memstore.Store, pub *memstore.Publisher) *service.ApplicationService {
	var ev *service.Events
	if pub != nil {
		ev = &service.Events{Pub: pub, Exchange: "jobboard.events"}
	}
	return service.NewApplicationService(store, store, store, ev, nil)
}

func TestApply_HappyPathThenDuplicate(t *testing.T) {
	store := memstore.New()
	pub := &memstore.Publisher{}
	svc := newApplications(store, pub)

	c := seedCompany(t, store, "Acme", "hr@acme.io")
	j := seedJob(t, store, c.ID, "Go Engineer", true)
	u := seedUser(t, store, "user_1")

	ctx := helper.WithRequestID(context.Background(), "req-42")
	a, err := svc.Apply(ctx, u, j.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, c.ID, a.CompanyID)
	assert.Equal(t, u.ID, a.UserID)
	assert.False(t, a.Date.IsZero())

	_, err = svc.Apply(ctx, u, j.ID.Hex())
	assert.ErrorIs(t, err, service.ErrAlreadyApplied)
	assert.Equal(t, 1, store.ApplicationCount())

	require.Len(t, pub.Events, 1)
	ev := pub.Events[0]
	assert.Equal(t, queue.KeyApplicationCreated, ev.Key)
	assert.Equal(t, "jobboard.events", ev.Exchange)
	assert.Equal(t, "req-42", ev.ReqID)
	created := ev.Event.(queue.ApplicationCreated)
	assert.Equal(t, "hr@acme.io", created.CompanyEmail)
	assert.Equal(t, "Go Engineer", created.JobTitle)
}

func TestApply_JobNotFound(t *testing.T) {
	store := memstore.New()
	svc := newApplications(store, &memstore.Publisher{})
	u := seedUser(t, store, "user_1")

	_, err := svc.Apply(context.Background(), u, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, service.ErrJobNotFound)

	_, err = svc.Apply(context.Background(), u, "not-an-id")
	assert.ErrorIs(t, err, service.ErrJobNotFound)
	assert.Equal(t, 0, store.ApplicationCount())
}

func TestApply_DuplicateCheckRunsBeforeJobLookup(t *testing.T) {
	store := memstore.New()
	svc := newApplications(store, nil)
	c := seedCompany(t, store, "Acme", "hr@acme.io")
	j := seedJob(t, store, c.ID, "Go Engineer", true)
	u := seedUser(t, store, "user_1")
	_, err := svc.Apply(context.Background(), u, j.ID.Hex())
	require.NoError(t, err)

	// the job lookup would fail now; the duplicate is reported first
	store.ErrFind = errors.New("db down")
	_, err = svc.Apply(context.Background(), u, j.ID.Hex())
	assert.ErrorIs(t, err, service.ErrAlreadyApplied)
}

func TestApply_RaceLoserGetsAlreadyApplied(t *testing.T) {
	store := memstore.New()
	svc := newApplications(store, nil)
	c := seedCompany(t, store, "Acme", "hr@acme.io")
	j := seedJob(t, store, c.ID, "Go Engineer", true)
	u := seedUser(t, store, "user_1")
	_, err := svc.Apply(context.Background(), u, j.ID.Hex())
	require.NoError(t, err)

	store.SkipExistsCheck = true
	_, err = svc.Apply(context.Background(), u, j.ID.Hex())
	assert.ErrorIs(t, err, service.ErrAlreadyApplied)
	assert.Equal(t, 1, store.ApplicationCount())
}

func TestApply_StoreFailureAndPublishFailure(t *testing.T) {
	store := memstore.New()
	pub := &memstore.Publisher{Err: errors.New("broker down")}
	svc := newApplications(store, pub)
	c := seedCompany(t, store, "Acme", "hr@acme.io")
	j := seedJob(t, store, c.ID, "Go Engineer", true)
	u := seedUser(t, store, "user_1")

	// publish failures never fail the request
	_, err := svc.Apply(context.Background(), u, j.ID.Hex())
	require.NoError(t, err)

	j2 := seedJob(t, store, c.ID, "Rust Engineer", true)
	store.ErrCreateApplication = errors.New("write failed")
	_, err = svc.Apply(context.Background(), u, j2.ID.Hex())
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrAlreadyApplied)
	assert.NotErrorIs(t, err, repo.ErrDuplicate)
}

func TestListForUser(t *testing.T) {
	store := memstore.New()
	svc := newApplications(store, nil)
	c := seedCompany(t, store, "Acme", "hr@acme.io")
	u := seedUser(t, store, "user_1")

	list, err := svc.ListForUser(context.Background(), u)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	j1 := seedJob(t, store, c.ID, "First", true)
	j2 := seedJob(t, store, c.ID, "Second", true)
	_, err = svc.Apply(context.Background(), u, j1.ID.Hex())
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), u, j2.ID.Hex())
	require.NoError(t, err)

	other := seedUser(t, store, "user_2")
	_, err = svc.Apply(context.Background(), other, j1.ID.Hex())
	require.NoError(t, err)

	list, err = svc.ListForUser(context.Background(), u)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		assert.Equal(t, u.ID, v.UserID)
		require.NotNil(t, v.Company)
		assert.Equal(t, "Acme", v.Company.Name)
		require.NotNil(t, v.Job)
	}
	assert.False(t, list[0].Date.Before(list[1].Date), "newest first")
}
