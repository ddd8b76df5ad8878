package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"        json:"id"`
	ExternalID string             `bson:"external_id"          json:"externalId"` // identity provider subject
	Email      string             `bson:"email"                json:"email"`
	Name       string             `bson:"name"                 json:"name"`
	Image      string             `bson:"image"                json:"image"`
	Resume     string             `bson:"resume,omitempty"     json:"resume,omitempty"`
	ResumeKey  string             `bson:"resume_key,omitempty" json:"-"` // object store key of Resume
	CreatedAt  time.Time          `bson:"created_at"           json:"createdAt"`
}

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	ImageURL   string
}
