package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tazhibayda/jobboard/internal/domain"
)

var jobSummaryProjection = bson.M{
	"job.company_id": 0,
	"job.visible":    0,
	"job.date":       0,
}

func (s *Store) ApplicationExists(ctx context.Context, userID, jobID primitive.ObjectID) (ok bool, err error) {
	span, ctx := startSpan(ctx, colApplications, "exists")
	defer func() { finish(span, err) }()

	n, err := s.colApplications.CountDocuments(ctx,
		bson.M{"user_id": userID, "job_id": jobID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateApplication returns ErrDuplicate when the user already applied to the job.
func (s *Store) CreateApplication(ctx context.Context, a *domain.JobApplication) (err error) {
	span, ctx := startSpan(ctx, colApplications, "insert")
	defer func() { finish(span, err) }()

	if a.Date.IsZero() {
		a.Date = time.Now().UTC()
	}
	res, err := s.colApplications.InsertOne(ctx, a)
	if IsDup(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

func jobLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         colJobs,
			"localField":   "job_id",
			"foreignField": "_id",
			"as":           "job",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$job", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: jobSummaryProjection}},
	}
}

// ListApplicationsByUser returns the user's applications, newest first, with
// company and job expanded.
func (s *Store) ListApplicationsByUser(ctx context.Context, userID primitive.ObjectID) (out []domain.ApplicationView, err error) {
	span, ctx := startSpan(ctx, colApplications, "list_by_user")
	defer func() { finish(span, err) }()

	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
	}
	pipe = append(pipe, companyLookup("company_id")...)
	pipe = append(pipe, jobLookup()...)

	cur, err := s.colApplications.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ApplicationView](ctx, cur)
}

// ListApplicantsByCompany returns applications received by the company with
// applicant and job expanded.
func (s *Store) ListApplicantsByCompany(ctx context.Context, companyID primitive.ObjectID) (out []domain.ApplicantView, err error) {
	span, ctx := startSpan(ctx, colApplications, "list_by_company")
	defer func() { finish(span, err) }()

	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"company_id": companyID}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         colUsers,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"user.external_id": 0,
			"user.email":       0,
			"user.resume_key":  0,
			"user.created_at":  0,
		}}},
	}
	pipe = append(pipe, jobLookup()...)

	cur, err := s.colApplications.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ApplicantView](ctx, cur)
}

// UpdateApplicationStatus sets the status of an application received by companyID.
func (s *Store) UpdateApplicationStatus(ctx context.Context, companyID, appID primitive.ObjectID, status string) (a *domain.JobApplication, err error) {
	span, ctx := startSpan(ctx, colApplications, "update_status")
	defer func() { finish(span, err) }()

	var out domain.JobApplication
	err = s.colApplications.FindOneAndUpdate(ctx,
		bson.M{"_id": appID, "company_id": companyID},
		bson.M{"$set": bson.M{"status": status}},
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
