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

// FindUserByExternalID returns nil, nil when no user carries that subject.
func (s *Store) FindUserByExternalID(ctx context.Context, externalID string) (u *domain.User, err error) {
	span, ctx := startSpan(ctx, colUsers, "find_by_external_id")
	defer func() { finish(span, err) }()

	var out domain.User
	err = s.colUsers.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (u *domain.User, err error) {
	span, ctx := startSpan(ctx, colUsers, "find_by_id")
	defer func() { finish(span, err) }()

	var out domain.User
	err = s.colUsers.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureUser inserts u unless a user with the same external id exists and
// returns the stored document. Existing documents are not modified.
func (s *Store) EnsureUser(ctx context.Context, u *domain.User) (out *domain.User, err error) {
	span, ctx := startSpan(ctx, colUsers, "ensure")
	defer func() { finish(span, err) }()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	upd := bson.M{"$setOnInsert": bson.M{
		"external_id": u.ExternalID,
		"email":       u.Email,
		"name":        u.Name,
		"image":       u.Image,
		"created_at":  u.CreatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc domain.User
	err = s.colUsers.FindOneAndUpdate(ctx, bson.M{"external_id": u.ExternalID}, upd, opts).Decode(&doc)
	if IsDup(err) {
		// a concurrent upsert won the insert; the document is there now
		var again domain.User
		if err = s.colUsers.FindOne(ctx, bson.M{"external_id": u.ExternalID}).Decode(&again); err != nil {
			return nil, err
		}
		return &again, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) UpdateUserResume(ctx context.Context, id primitive.ObjectID, url, key string) (err error) {
	span, ctx := startSpan(ctx, colUsers, "update_resume")
	defer func() { finish(span, err) }()

	res, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"resume": url, "resume_key": key}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
