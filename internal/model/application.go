package model

import (
	"slices"
	"time"
)

// ApplicationStatus is the pipeline stage of a job application.
type ApplicationStatus string

const (
	StatusSaved        ApplicationStatus = "saved"
	StatusApplied      ApplicationStatus = "applied"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusOffer        ApplicationStatus = "offer"
	StatusRejected     ApplicationStatus = "rejected"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []ApplicationStatus{StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected}

// IsValid reports whether s is a known status.
func (s ApplicationStatus) IsValid() bool {
	return slices.Contains(ValidStatuses, s)
}

// Priority ranks applications for the owner.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// JobApplication is a single tracked application owned by one user.
type JobApplication struct {
	ID                string            `json:"id"`
	UserID            string            `json:"userId"`
	CompanyName       string            `json:"companyName"`
	JobTitle          string            `json:"jobTitle"`
	JobType           string            `json:"jobType"`
	Location          string            `json:"location"`
	ApplicationStatus ApplicationStatus `json:"applicationStatus"`
	Priority          Priority          `json:"priority"`
	JobURL            *string           `json:"jobURL,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// ApplicationFilter narrows an application listing.
type ApplicationFilter struct {
	UserID   string
	Statuses []ApplicationStatus
	Skip     int
	Take     int
}
