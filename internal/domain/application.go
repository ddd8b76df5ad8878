package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// JobApplication is unique per (UserID, JobID); the repository enforces it with an index.
type JobApplication struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID `bson:"company_id"    json:"companyId"`
	UserID    primitive.ObjectID `bson:"user_id"       json:"userId"`
	JobID     primitive.ObjectID `bson:"job_id"        json:"jobId"`
	Status    string             `bson:"status"        json:"status"`
	Date      time.Time          `bson:"date"          json:"date"`
}

// ApplicationView is an application of the caller with company and job expanded.
type ApplicationView struct {
	JobApplication `bson:",inline"`
	Company        *CompanySummary `bson:"company,omitempty" json:"company"`
	Job            *JobSummary     `bson:"job,omitempty"     json:"job"`
}

// ApplicantSummary is the applicant projection shown to companies.
type ApplicantSummary struct {
	ID     primitive.ObjectID `bson:"_id"              json:"id"`
	Name   string             `bson:"name"             json:"name"`
	Image  string             `bson:"image"            json:"image"`
	Resume string             `bson:"resume,omitempty" json:"resume,omitempty"`
}

// ApplicantView is an application received by a company.
type ApplicantView struct {
	JobApplication `bson:",inline"`
	User           *ApplicantSummary `bson:"user,omitempty" json:"user"`
	Job            *JobSummary       `bson:"job,omitempty"  json:"job"`
}
