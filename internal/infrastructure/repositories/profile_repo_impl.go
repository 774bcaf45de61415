package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/infrastructure/models"
)

// ProfileRepository implements profile data operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile. The identity id is the primary key, so
// a concurrent create for the same identity surfaces as ErrAlreadyExists
// rather than a second row.
func (r *ProfileRepository) Create(ctx context.Context, profile *entities.Profile) error {
	m := &models.Profile{
		ID:                profile.ID,
		Email:             profile.Email,
		DisplayName:       profile.DisplayName,
		Role:              string(profile.Role),
		IsProfileComplete: profile.IsProfileComplete,
		DOB:               profile.DOB.Ptr(),
		School:            profile.School.Ptr(),
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         profile.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a profile by identity id
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	var m models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toProfileEntity(&m), nil
}

// Update merges the mutable profile fields. Role is never part of the
// update set; it is only written at creation.
func (r *ProfileRepository) Update(ctx context.Context, profile *entities.Profile) error {
	updates := map[string]interface{}{
		"email":               profile.Email,
		"display_name":        profile.DisplayName,
		"is_profile_complete": profile.IsProfileComplete,
		"updated_at":          time.Now(),
	}
	if profile.DOB.Valid {
		updates["dob"] = profile.DOB.Time
	}
	if profile.School.Valid {
		updates["school"] = profile.School.String
	}

	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profile.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toProfileEntity(m *models.Profile) *entities.Profile {
	return &entities.Profile{
		ID:                m.ID,
		Email:             m.Email,
		DisplayName:       m.DisplayName,
		Role:              entities.Role(m.Role),
		IsProfileComplete: m.IsProfileComplete,
		DOB:               null.TimeFromPtr(m.DOB),
		School:            null.StringFromPtr(m.School),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
