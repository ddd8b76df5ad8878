package repo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/jobboard/internal/domain"
)

// companyLookup joins the owning company as "company", without credentials.
func companyLookup(localField string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         colCompanies,
			"localField":   localField,
			"foreignField": "_id",
			"as":           "company",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$company", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"company.password_hash": 0, "company.created_at": 0}}},
	}
}

func (s *Store) CreateJob(ctx context.Context, j *domain.Job) (err error) {
	span, ctx := startSpan(ctx, colJobs, "insert")
	defer func() { finish(span, err) }()

	if j.Date.IsZero() {
		j.Date = time.Now().UTC()
	}
	res, err := s.colJobs.InsertOne(ctx, j)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		j.ID = oid
	}
	return nil
}

// FindJobByID returns nil, nil when the job does not exist.
func (s *Store) FindJobByID(ctx context.Context, id primitive.ObjectID) (j *domain.Job, err error) {
	span, ctx := startSpan(ctx, colJobs, "find_by_id")
	defer func() { finish(span, err) }()

	var out domain.Job
	err = s.colJobs.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) listings(ctx context.Context, match bson.M, limit int64) ([]domain.JobListing, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
	}
	if limit > 0 {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: limit}})
	}
	pipe = append(pipe, companyLookup("company_id")...)

	cur, err := s.colJobs.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.JobListing](ctx, cur)
}

// ListVisibleJobs returns the public catalogue, newest first.
func (s *Store) ListVisibleJobs(ctx context.Context) (out []domain.JobListing, err error) {
	span, ctx := startSpan(ctx, colJobs, "list_visible")
	defer func() { finish(span, err) }()

	return s.listings(ctx, bson.M{"visible": true}, 0)
}

// FindJobsByIDs returns the visible jobs among ids. Order is not preserved.
func (s *Store) FindJobsByIDs(ctx context.Context, ids []primitive.ObjectID) (out []domain.JobListing, err error) {
	span, ctx := startSpan(ctx, colJobs, "find_by_ids")
	defer func() { finish(span, err) }()

	if len(ids) == 0 {
		return []domain.JobListing{}, nil
	}
	return s.listings(ctx, bson.M{"_id": bson.M{"$in": ids}, "visible": true}, 0)
}

// SearchJobs matches q case-insensitively against title, category and location.
func (s *Store) SearchJobs(ctx context.Context, q string, limit int) (out []domain.JobListing, err error) {
	span, ctx := startSpan(ctx, colJobs, "search")
	defer func() { finish(span, err) }()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	match := bson.M{
		"visible": true,
		"$or": bson.A{
			bson.M{"title": rx},
			bson.M{"category": rx},
			bson.M{"location": rx},
		},
	}
	return s.listings(ctx, match, int64(limit))
}

// ListJobsByCompany returns the company's jobs with the number of applications each received.
func (s *Store) ListJobsByCompany(ctx context.Context, companyID primitive.ObjectID) (out []domain.CompanyJob, err error) {
	span, ctx := startSpan(ctx, colJobs, "list_by_company")
	defer func() { finish(span, err) }()

	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"company_id": companyID}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         colApplications,
			"localField":   "_id",
			"foreignField": "job_id",
			"as":           "apps",
		}}},
		{{Key: "$addFields", Value: bson.M{"applicants": bson.M{"$size": "$apps"}}}},
		{{Key: "$project", Value: bson.M{"apps": 0}}},
	}
	cur, err := s.colJobs.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.CompanyJob](ctx, cur)
}

// ToggleJobVisibility flips visible on a job owned by companyID and returns the updated job.
func (s *Store) ToggleJobVisibility(ctx context.Context, companyID, jobID primitive.ObjectID) (j *domain.Job, err error) {
	span, ctx := startSpan(ctx, colJobs, "toggle_visibility")
	defer func() { finish(span, err) }()

	upd := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"visible": bson.M{"$not": bson.A{"$visible"}}}}},
	}
	var out domain.Job
	err = s.colJobs.FindOneAndUpdate(ctx,
		bson.M{"_id": jobID, "company_id": companyID}, upd,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
