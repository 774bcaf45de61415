package repositories

import (
	"context"

	"github.com/google/uuid"
	"hack-portal.backend/internal/domain/entities"
)

// ApplicationRepository defines application data operations. The
// uniqueness constraint on user_id backs the one-application-per-owner
// invariant; Upsert and UpdateStatusFrom are single atomic statements so
// concurrent submits and transitions cannot lose updates.
type ApplicationRepository interface {
	// Upsert inserts the owner's application with status Under Review,
	// or overwrites an existing Draft row in place. When a row exists in
	// any other status it returns ErrAlreadySubmitted and writes nothing.
	Upsert(ctx context.Context, app *entities.Application) error
	// SaveDraft inserts or overwrites the owner's application while it
	// is still a Draft, leaving the status untouched. A row past Draft
	// returns ErrAlreadySubmitted.
	SaveDraft(ctx context.Context, app *entities.Application) error
	// UpdateResumeKey records the uploaded resume's object key on the
	// owner's application. A missing row is not an error; the key is
	// simply not recorded yet.
	UpdateResumeKey(ctx context.Context, userID uuid.UUID, key string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Application, error)
	// UpdateStatusFrom performs a conditional status update: the write
	// only lands when the current status is one of from. Zero rows
	// affected means either a missing record or a status that moved
	// concurrently; callers distinguish via GetByID.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []entities.ApplicationStatus, to entities.ApplicationStatus) error
	// List returns a filtered, paginated admin projection joined with
	// profile display fields, plus the total matching count.
	List(ctx context.Context, filter entities.ApplicationFilter, limit, offset int) ([]*entities.ApplicationRow, int64, error)
	CountByStatus(ctx context.Context) (map[entities.ApplicationStatus]int64, error)
}
