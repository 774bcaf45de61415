package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/domain/repositories"
)

const (
	ensureProfileAttempts = 3
	ensureProfileBackoff  = 50 * time.Millisecond

	minApplicantAge = 13
	maxApplicantAge = 100
)

// ProfileUsecase handles profile business logic
type ProfileUsecase struct {
	profileRepo repositories.ProfileRepository
}

// NewProfileUsecase creates a new profile usecase
func NewProfileUsecase(profileRepo repositories.ProfileRepository) *ProfileUsecase {
	return &ProfileUsecase{profileRepo: profileRepo}
}

// GetProfile gets the profile for an identity
func (u *ProfileUsecase) GetProfile(ctx context.Context, identityID uuid.UUID) (*entities.Profile, error) {
	return u.profileRepo.GetByID(ctx, identityID)
}

// EnsureProfile creates the profile for an identity if absent. It is
// idempotent under concurrency: two OAuth callbacks racing for the same
// identity both end up observing the single row, the loser of the insert
// race via the store's uniqueness constraint. Transient store conflicts
// retry with backoff before surfacing ErrProvider.
func (u *ProfileUsecase) EnsureProfile(ctx context.Context, ident *entities.Identity, displayName string) (*entities.Profile, error) {
	var lastErr error
	for attempt := 0; attempt < ensureProfileAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * ensureProfileBackoff):
			}
		}

		profile, err := u.profileRepo.GetByID(ctx, ident.ID)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			lastErr = err
			continue
		}

		now := time.Now()
		profile = &entities.Profile{
			ID:                ident.ID,
			Email:             ident.Email,
			DisplayName:       displayName,
			Role:              entities.RoleApplicant,
			IsProfileComplete: false,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		err = u.profileRepo.Create(ctx, profile)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// Lost the race; the next iteration reads the winner's row.
			lastErr = err
			continue
		}
		lastErr = err
	}
	return nil, domainerrors.ProviderUnavailable(lastErr)
}

// MarkComplete merges the completion form fields and flips the profile
// to complete. Missing required fields or an out-of-range age reject
// with a validation error and write nothing.
func (u *ProfileUsecase) MarkComplete(ctx context.Context, identityID uuid.UUID, input *entities.CompleteProfileInput) (*entities.Profile, error) {
	if input.DisplayName == "" || input.Email == "" || input.School == "" || input.DOB == "" {
		return nil, domainerrors.Validation("display name, email, school and date of birth are required")
	}

	dob, err := time.Parse("2006-01-02", input.DOB)
	if err != nil {
		return nil, domainerrors.Validation("date of birth must be YYYY-MM-DD")
	}

	profile, err := u.profileRepo.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	profile.DisplayName = input.DisplayName
	profile.Email = input.Email
	profile.School = null.StringFrom(input.School)
	profile.DOB = null.TimeFrom(dob)

	if age := profile.Age(time.Now()); age < minApplicantAge || age > maxApplicantAge {
		return nil, domainerrors.Validation("age must be between 13 and 100")
	}

	profile.IsProfileComplete = true
	if err := u.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DisplayNameFromMetadata derives a display name from OAuth provider
// metadata, falling back through the commonly populated keys to the
// email local part, matching what providers actually send.
func DisplayNameFromMetadata(metadata map[string]interface{}, email string) string {
	for _, key := range []string{"full_name", "name", "user_name", "username"} {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "User"
}
