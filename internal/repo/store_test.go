package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/repo"
	"github.com/tazhibayda/jobboard/internal/service"
)

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("mongo integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	mc, err := mongodb.Run(ctx, "mongo:6")
	require.NoError(t, err)
	t.Cleanup(func() { _ = mc.Terminate(context.Background()) })

	uri, err := mc.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := repo.NewStore(ctx, uri, "jobboard_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestStore_EnsureUserIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]primitive.ObjectID, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := store.EnsureUser(ctx, &domain.User{ExternalID: "user_1", Email: "a@example.com", Name: "A"})
			if assert.NoError(t, err) {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	// a later call with different profile data does not overwrite
	u, err := store.EnsureUser(ctx, &domain.User{ExternalID: "user_1", Email: "new@example.com", Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	require.NoError(t, store.UpdateUserResume(ctx, u.ID, "https://cdn/r.pdf", "resumes/x.pdf"))
	got, err := store.FindUserByExternalID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/r.pdf", got.Resume)
	assert.Equal(t, "resumes/x.pdf", got.ResumeKey)

	assert.ErrorIs(t, store.UpdateUserResume(ctx, primitive.NewObjectID(), "u", "k"), repo.ErrNotFound)
}

func TestStore_ApplicationsFlow(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	c := &domain.Company{Name: "Acme", Email: "HR@Acme.io", PasswordHash: "x"}
	require.NoError(t, store.CreateCompany(ctx, c))
	assert.ErrorIs(t, store.CreateCompany(ctx, &domain.Company{Name: "Dup", Email: "hr@acme.io"}), repo.ErrDuplicate)

	j := &domain.Job{CompanyID: c.ID, Title: "Go Engineer", Location: "Remote", Category: "Programming", Level: "Senior", Salary: 100, Visible: true}
	require.NoError(t, store.CreateJob(ctx, j))

	u, err := store.EnsureUser(ctx, &domain.User{ExternalID: "user_2", Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	exists, err := store.ApplicationExists(ctx, u.ID, j.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	a := &domain.JobApplication{CompanyID: c.ID, UserID: u.ID, JobID: j.ID, Status: domain.StatusPending, Date: time.Now().UTC()}
	require.NoError(t, store.CreateApplication(ctx, a))
	assert.ErrorIs(t, store.CreateApplication(ctx, &domain.JobApplication{CompanyID: c.ID, UserID: u.ID, JobID: j.ID}), repo.ErrDuplicate)

	views, err := store.ListApplicationsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Company)
	require.NotNil(t, views[0].Job)
	assert.Equal(t, "Acme", views[0].Company.Name)
	assert.Equal(t, "Go Engineer", views[0].Job.Title)

	applicants, err := store.ListApplicantsByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, "Jane", applicants[0].User.Name)

	jobs, err := store.ListJobsByCompany(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.EqualValues(t, 1, jobs[0].Applicants)

	upd, err := store.UpdateApplicationStatus(ctx, c.ID, a.ID, domain.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, upd.Status)
	_, err = store.UpdateApplicationStatus(ctx, primitive.NewObjectID(), a.ID, domain.StatusRejected)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	hidden, err := store.ToggleJobVisibility(ctx, c.ID, j.ID)
	require.NoError(t, err)
	assert.False(t, hidden.Visible)
	list, err := store.ListVisibleJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.ToggleJobVisibility(ctx, c.ID, j.ID)
	require.NoError(t, err)
	found, err := store.SearchJobs(ctx, "engineer", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "hr@acme.io", found[0].Company.Email)
}

func TestStore_ConcurrentApplyStoresOne(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	c := &domain.Company{Name: "Acme", Email: "jobs@acme.io"}
	require.NoError(t, store.CreateCompany(ctx, c))
	j := &domain.Job{CompanyID: c.ID, Title: "Go Engineer", Visible: true}
	require.NoError(t, store.CreateJob(ctx, j))
	u, err := store.EnsureUser(ctx, &domain.User{ExternalID: "user_3", Name: "Jane"})
	require.NoError(t, err)

	apps := service.NewApplicationService(store, store, store, nil, nil)

	const attempts = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = apps.Apply(ctx, u, j.ID.Hex())
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrAlreadyApplied):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)

	views, err := store.ListApplicationsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}
