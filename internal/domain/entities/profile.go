package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Role represents portal roles. Role is never settable through the
// applicant-facing API; it defaults to applicant at creation and is the
// one field the gateway trusts as an authorization input.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
)

// Profile is the portal-local record layering role and completion state
// onto an Identity. Exactly one profile exists per identity; its ID is
// the identity ID.
type Profile struct {
	ID                uuid.UUID   `json:"id"`
	Email             string      `json:"email"`
	DisplayName       string      `json:"displayName"`
	Role              Role        `json:"role"`
	IsProfileComplete bool        `json:"isProfileComplete"`
	DOB               null.Time   `json:"dob,omitempty"`
	School            null.String `json:"school,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// Age returns the profile's age in whole years at the given time, or
// -1 when no date of birth is recorded.
func (p *Profile) Age(at time.Time) int {
	if !p.DOB.Valid {
		return -1
	}
	dob := p.DOB.Time
	years := at.Year() - dob.Year()
	if at.YearDay() < dob.YearDay() {
		years--
	}
	return years
}

// CompleteProfileInput represents input for the profile completion form
type CompleteProfileInput struct {
	DisplayName string `json:"displayName" binding:"required,min=1,max=100"`
	Email       string `json:"email" binding:"required,email"`
	School      string `json:"school" binding:"required"`
	DOB         string `json:"dob" binding:"required"` // YYYY-MM-DD
}
