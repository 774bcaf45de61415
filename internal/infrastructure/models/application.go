package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Status string    `gorm:"type:varchar(50);not null;default:'Draft'"`

	PhoneNumber string `gorm:"type:varchar(50);not null"`
	Address     string `gorm:"type:text;not null"`
	Citizenship string `gorm:"type:varchar(100);not null"`

	IsStudent      bool
	School         *string `gorm:"type:varchar(255)"`
	StudyLevel     *string `gorm:"type:varchar(100)"`
	GraduationYear *int64
	Major          *string `gorm:"type:varchar(255)"`

	AttendedMLH             bool
	TechnicalSkills         string `gorm:"type:text"` // JSON array
	ProgrammingLanguages    string `gorm:"type:text"` // JSON array
	HackathonExperience     bool
	HackathonExperienceDesc *string `gorm:"type:text"`

	HasTeam               bool
	NeedsTeammates        bool
	DesiredTeammateSkills *string `gorm:"type:text"`
	Goals                 string  `gorm:"type:text;not null"`
	HeardFrom             string  `gorm:"type:varchar(255);not null"`

	NeedsSponsorship    bool
	AccessibilityNeeds  bool
	AccessibilityDesc   *string `gorm:"type:text"`
	DietaryRestrictions bool
	DietaryDesc         *string `gorm:"type:text"`

	EmergencyContactName     string `gorm:"type:varchar(255);not null"`
	EmergencyContactPhone    string `gorm:"type:varchar(50);not null"`
	EmergencyContactRelation string `gorm:"type:varchar(100);not null"`

	TshirtSize       string `gorm:"type:varchar(10);not null"`
	Ethnicity        string `gorm:"type:text"` // JSON array
	Underrepresented bool

	MLHCodeOfConduct     bool
	MLHDataSharing       bool
	MLHCommunications    bool
	InfoAccurate         bool
	UnderstandsAdmission bool

	ResumeKey *string `gorm:"type:varchar(512)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Application) TableName() string {
	return "application"
}
