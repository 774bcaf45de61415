package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ApplicationStatus represents the four-state application lifecycle
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "Draft"
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusAccepted    ApplicationStatus = "Accepted"
	StatusRejected    ApplicationStatus = "Rejected"
)

// Valid reports whether s is one of the four lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application is the single hackathon application per profile. The
// user_id column is unique; the store enforces at most one row per owner.
type Application struct {
	ID     uuid.UUID         `json:"id"`
	UserID uuid.UUID         `json:"userId"`
	Status ApplicationStatus `json:"status"`

	// Basic info
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Citizenship string `json:"citizenship"`

	// Education
	IsStudent      bool        `json:"isStudent"`
	School         null.String `json:"school,omitempty"`
	StudyLevel     null.String `json:"studyLevel,omitempty"`
	GraduationYear null.Int64  `json:"graduationYear,omitempty"`
	Major          null.String `json:"major,omitempty"`

	// Experience
	AttendedMLH             bool        `json:"attendedMlh"`
	TechnicalSkills         []string    `json:"technicalSkills"`
	ProgrammingLanguages    []string    `json:"programmingLanguages"`
	HackathonExperience     bool        `json:"hackathonExperience"`
	HackathonExperienceDesc null.String `json:"hackathonExperienceDesc,omitempty"`

	// Team and goals
	HasTeam               bool        `json:"hasTeam"`
	NeedsTeammates        bool        `json:"needsTeammates"`
	DesiredTeammateSkills null.String `json:"desiredTeammateSkills,omitempty"`
	Goals                 string      `json:"goals"`
	HeardFrom             string      `json:"heardFrom"`

	// Support needs
	NeedsSponsorship    bool        `json:"needsSponsorship"`
	AccessibilityNeeds  bool        `json:"accessibilityNeeds"`
	AccessibilityDesc   null.String `json:"accessibilityDesc,omitempty"`
	DietaryRestrictions bool        `json:"dietaryRestrictions"`
	DietaryDesc         null.String `json:"dietaryDesc,omitempty"`

	// Emergency contact
	EmergencyContactName     string `json:"emergencyContactName"`
	EmergencyContactPhone    string `json:"emergencyContactPhone"`
	EmergencyContactRelation string `json:"emergencyContactRelation"`

	// Demographics
	TshirtSize       string   `json:"tshirtSize"`
	Ethnicity        []string `json:"ethnicity"`
	Underrepresented bool     `json:"underrepresented"`

	// Agreements. The mandatory ones are re-validated server side on
	// every submit regardless of client state.
	MLHCodeOfConduct     bool `json:"mlhCodeOfConduct"`
	MLHDataSharing       bool `json:"mlhDataSharing"`
	MLHCommunications    bool `json:"mlhCommunications"`
	InfoAccurate         bool `json:"infoAccurate"`
	UnderstandsAdmission bool `json:"understandsAdmission"`

	ResumeKey null.String `json:"resumeKey,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubmitApplicationInput represents the application form payload
type SubmitApplicationInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required,min=10"`
	Address     string `json:"address" binding:"required"`
	Citizenship string `json:"citizenship" binding:"required"`

	IsStudent      bool   `json:"isStudent"`
	School         string `json:"school"`
	StudyLevel     string `json:"studyLevel"`
	GraduationYear int    `json:"graduationYear"`
	Major          string `json:"major"`

	AttendedMLH             bool     `json:"attendedMlh"`
	TechnicalSkills         []string `json:"technicalSkills"`
	ProgrammingLanguages    []string `json:"programmingLanguages"`
	HackathonExperience     bool     `json:"hackathonExperience"`
	HackathonExperienceDesc string   `json:"hackathonExperienceDesc"`

	HasTeam               bool   `json:"hasTeam"`
	NeedsTeammates        bool   `json:"needsTeammates"`
	DesiredTeammateSkills string `json:"desiredTeammateSkills"`
	Goals                 string `json:"goals" binding:"required"`
	HeardFrom             string `json:"heardFrom" binding:"required"`

	NeedsSponsorship    bool   `json:"needsSponsorship"`
	AccessibilityNeeds  bool   `json:"accessibilityNeeds"`
	AccessibilityDesc   string `json:"accessibilityDesc"`
	DietaryRestrictions bool   `json:"dietaryRestrictions"`
	DietaryDesc         string `json:"dietaryDesc"`

	EmergencyContactName     string `json:"emergencyContactName" binding:"required"`
	EmergencyContactPhone    string `json:"emergencyContactPhone" binding:"required,min=10"`
	EmergencyContactRelation string `json:"emergencyContactRelation" binding:"required"`

	TshirtSize       string   `json:"tshirtSize" binding:"required"`
	Ethnicity        []string `json:"ethnicity"`
	Underrepresented bool     `json:"underrepresented"`

	MLHCodeOfConduct     bool `json:"mlhCodeOfConduct"`
	MLHDataSharing       bool `json:"mlhDataSharing"`
	MLHCommunications    bool `json:"mlhCommunications"`
	InfoAccurate         bool `json:"infoAccurate"`
	UnderstandsAdmission bool `json:"understandsAdmission"`
}

// ApplicationRow is the admin console projection of an application.
type ApplicationRow struct {
	ID          uuid.UUID         `json:"id"`
	DisplayName string            `json:"displayName"`
	Email       string            `json:"email"`
	School      string            `json:"school"`
	Status      ApplicationStatus `json:"status"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// ApplicationFilter narrows the admin console listing. Search matches
// name, email and school substrings case-insensitively; Status is an
// exact match. Both combine with AND.
type ApplicationFilter struct {
	Search string
	Status ApplicationStatus
}

// ApplicationStats is the admin console summary. Drafts count toward
// Total but not toward the review buckets.
type ApplicationStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

// BulkTransitionResult reports per-id outcomes of a bulk status change.
// Failures never abort the rest of the batch.
type BulkTransitionResult struct {
	Succeeded []uuid.UUID          `json:"succeeded"`
	Failed    map[uuid.UUID]string `json:"failed"`
}
