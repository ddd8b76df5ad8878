package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

const (
	colUsers        = "users"
	colCompanies    = "companies"
	colJobs         = "jobs"
	colApplications = "job_applications"
)

type Store struct {
	Client          *mongo.Client
	DB              *mongo.Database
	colUsers        *mongo.Collection
	colCompanies    *mongo.Collection
	colJobs         *mongo.Collection
	colApplications *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:          cli,
		DB:              db,
		colUsers:        db.Collection(colUsers),
		colCompanies:    db.Collection(colCompanies),
		colJobs:         db.Collection(colJobs),
		colApplications: db.Collection(colApplications),
	}, nil
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (user_id, job_id) index is what makes a second application for the same job fail.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colUsers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_external_id"),
	})
	if err != nil {
		return err
	}

	_, err = s.colCompanies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return err
	}

	_, err = s.colJobs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "visible", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("visible_date_desc"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("company_date_desc"),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.colApplications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "job_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_job"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("company_date_desc"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("user_date_desc"),
		},
	})
	return err
}

func IsDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}

// startSpan opens a Datadog span named mongo.<collection>.<op>.
func startSpan(ctx context.Context, col, op string) (ddtrace.Span, context.Context) {
	return tracer.StartSpanFromContext(ctx, "mongo."+col+"."+op,
		tracer.SpanType(ext.SpanTypeMongoDB),
		tracer.ResourceName(col+"."+op),
		tracer.Tag(ext.DBType, "mongo"),
	)
}

func finish(span ddtrace.Span, err error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = nil
	}
	span.Finish(tracer.WithError(err))
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, cur.Err()
}
