package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/jobboard/internal/domain"
)

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Store) CreateCompany(ctx context.Context, c *domain.Company) (err error) {
	span, ctx := startSpan(ctx, colCompanies, "insert")
	defer func() { finish(span, err) }()

	c.Email = normalizeEmail(c.Email)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := s.colCompanies.InsertOne(ctx, c)
	if IsDup(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (s *Store) FindCompanyByEmail(ctx context.Context, email string) (c *domain.Company, err error) {
	span, ctx := startSpan(ctx, colCompanies, "find_by_email")
	defer func() { finish(span, err) }()

	var out domain.Company
	err = s.colCompanies.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) FindCompanyByID(ctx context.Context, id primitive.ObjectID) (c *domain.Company, err error) {
	span, ctx := startSpan(ctx, colCompanies, "find_by_id")
	defer func() { finish(span, err) }()

	var out domain.Company
	err = s.colCompanies.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
