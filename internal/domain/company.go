package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Company struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"  json:"id"`
	Name         string             `bson:"name"           json:"name"`
	Email        string             `bson:"email"          json:"email"`
	Image        string             `bson:"image"          json:"image"`
	PasswordHash string             `bson:"password_hash"  json:"-"`
	CreatedAt    time.Time          `bson:"created_at"     json:"createdAt"`
}

// CompanySummary is the projection embedded in job and application listings.
type CompanySummary struct {
	ID    primitive.ObjectID `bson:"_id"   json:"id"`
	Name  string             `bson:"name"  json:"name"`
	Email string             `bson:"email" json:"email"`
	Image string             `bson:"image" json:"image"`
}
