package repositories

import (
	"context"

	"github.com/google/uuid"
	"hack-portal.backend/internal/domain/entities"
)

// ProfileRepository defines profile data operations
type ProfileRepository interface {
	// Create inserts a new profile. Returns ErrAlreadyExists when a row
	// for the same identity already exists (unique primary key).
	Create(ctx context.Context, profile *entities.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	// Update merges the supplied profile fields into the existing row.
	// Role is deliberately not part of the update set.
	Update(ctx context.Context, profile *entities.Profile) error
}
