package service

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/domain"
	"github.com/tazhibayda/jobboard/internal/log"
)

const defaultSearchLimit = 50

// JobCatalog is the public, read-only view of visible jobs.
type JobCatalog struct {
	jobs  JobStore
	index JobIndex
	log   *zap.Logger
}

// NewJobCatalog builds a catalog. Without an index, search falls back to the database.
func NewJobCatalog(jobs JobStore, index JobIndex, logger *zap.Logger) *JobCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobCatalog{jobs: jobs, index: index, log: logger}
}

func (c *JobCatalog) List(ctx context.Context) ([]domain.JobListing, error) {
	out, err := c.jobs.ListVisibleJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/jobs: list: %w", err)
	}
	if out == nil {
		out = []domain.JobListing{}
	}
	return out, nil
}

func (c *JobCatalog) Get(ctx context.Context, id string) (*domain.JobListing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrJobNotFound
	}
	out, err := c.jobs.FindJobsByIDs(ctx, []primitive.ObjectID{oid})
	if err != nil {
		return nil, fmt.Errorf("service/jobs: get %s: %w", id, err)
	}
	if len(out) == 0 {
		return nil, ErrJobNotFound
	}
	return &out[0], nil
}

// Search returns visible jobs matching q. An empty q lists everything.
func (c *JobCatalog) Search(ctx context.Context, q string, limit int) ([]domain.JobListing, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return c.List(ctx)
	}
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	if c.index != nil {
		out, err := c.searchIndex(ctx, q, limit)
		if err == nil {
			return out, nil
		}
		log.WithDD(ctx, c.log).Warn("search index unavailable, using database", zap.Error(err))
	}

	out, err := c.jobs.SearchJobs(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("service/jobs: search: %w", err)
	}
	if out == nil {
		out = []domain.JobListing{}
	}
	return out, nil
}

func (c *JobCatalog) searchIndex(ctx context.Context, q string, limit int) ([]domain.JobListing, error) {
	ids, err := c.index.SearchJobIDs(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	found, err := c.jobs.FindJobsByIDs(ctx, oids)
	if err != nil {
		return nil, err
	}

	// keep relevance order from the index; stale index entries drop out here
	byID := make(map[primitive.ObjectID]domain.JobListing, len(found))
	for _, j := range found {
		byID[j.ID] = j
	}
	out := make([]domain.JobListing, 0, len(found))
	for _, oid := range oids {
		if j, ok := byID[oid]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}
