package models

import (
	"time"

	"github.com/google/uuid"
)

// Volunteer statuses. There is no transition back to pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Volunteer is one application submitted through the public signup form or
// created pre-approved by a bulk import. HubspotID is set exactly once, after
// the first successful sync of an approved record. Deletes are hard deletes so
// a removed application frees its email for a new signup.
type Volunteer struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PhoneNumber    string    `gorm:"size:30" json:"phone_number"`
	PreferredRole  string    `gorm:"size:100" json:"preferred_role"`
	Availability   string    `gorm:"size:100" json:"availability"`
	ReferralSource string    `gorm:"size:200" json:"referral_source"`
	Status         string    `gorm:"size:20;not null;default:'pending';index" json:"status"`
	HubspotID      *string   `gorm:"size:64" json:"hubspot_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
