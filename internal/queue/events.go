package queue

import "time"

const (
	KeyApplicationCreated = "application.created"
	KeyStatusChanged      = "application.status_changed"
)

type ApplicationCreated struct {
	ApplicationID string    `json:"application_id"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	CompanyID     string    `json:"company_id"`
	CompanyEmail  string    `json:"company_email"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	Date          time.Time `json:"date"`
}

type ApplicationStatusChanged struct {
	ApplicationID string `json:"application_id"`
	JobTitle      string `json:"job_title"`
	CompanyName   string `json:"company_name"`
	UserEmail     string `json:"user_email"`
	UserName      string `json:"user_name"`
	Status        string `json:"status"`
}
