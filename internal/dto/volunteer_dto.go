package dto

import (
	"time"

	"github.com/google/uuid"
)

// SignupRequest is the public signup form payload. The referral source is the
// only optional field.
type SignupRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	PhoneNumber    string `json:"phone_number" validate:"required,max=30"`
	PreferredRole  string `json:"preferred_role" validate:"required,max=100"`
	Availability   string `json:"availability" validate:"required,max=100"`
	ReferralSource string `json:"referral_source" validate:"max=200"`
}

// UpdateVolunteerRequest carries a partial update; nil fields are untouched.
// Status is deliberately absent: it only changes through approve/reject.
type UpdateVolunteerRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	PhoneNumber    *string `json:"phone_number"`
	PreferredRole  *string `json:"preferred_role"`
	Availability   *string `json:"availability"`
	ReferralSource *string `json:"referral_source"`
}

type VolunteerResponse struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	PreferredRole  string    `json:"preferred_role"`
	Availability   string    `json:"availability"`
	ReferralSource string    `json:"referral_source"`
	Status         string    `json:"status"`
	HubspotID      *string   `json:"hubspot_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type VolunteerListResponse struct {
	Volunteers []VolunteerResponse `json:"volunteers"`
	Total      int64               `json:"total"`
}

type StatusMessageResponse struct {
	Status string `json:"status"`
}

// ImportSummary is the only user-visible output of a bulk import.
type ImportSummary struct {
	Parsed      int      `json:"parsed"`
	Inserted    int      `json:"inserted"`
	Synced      int      `json:"synced"`
	Skipped     int      `json:"skipped"`
	SkipReasons []string `json:"skip_reasons,omitempty"`
}

type RoleCount struct {
	PreferredRole string `json:"preferred_role"`
	Count         int64  `json:"count"`
}
