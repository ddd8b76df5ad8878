package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID `bson:"company_id"    json:"companyId"`
	Title       string             `bson:"title"         json:"title"`
	Description string             `bson:"description"   json:"description"`
	Location    string             `bson:"location"      json:"location"`
	Category    string             `bson:"category"      json:"category"`
	Level       string             `bson:"level"         json:"level"`
	Salary      int64              `bson:"salary"        json:"salary"`
	Visible     bool               `bson:"visible"       json:"visible"`
	Date        time.Time          `bson:"date"          json:"date"`
}

// JobSummary is the projection embedded in application listings.
type JobSummary struct {
	ID          primitive.ObjectID `bson:"_id"         json:"id"`
	Title       string             `bson:"title"       json:"title"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location"    json:"location"`
	Category    string             `bson:"category"    json:"category"`
	Level       string             `bson:"level"       json:"level"`
	Salary      int64              `bson:"salary"      json:"salary"`
}

// JobListing is a public job with its company expanded.
type JobListing struct {
	Job     `bson:",inline"`
	Company *CompanySummary `bson:"company,omitempty" json:"company,omitempty"`
}

// CompanyJob is a job as seen by its owner, with the number of applications received.
type CompanyJob struct {
	Job        `bson:",inline"`
	Applicants int64 `bson:"applicants" json:"applicants"`
}
