package usecases

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/domain/repositories"
	"hack-portal.backend/pkg/redis"
	"hack-portal.backend/pkg/utils"
)

// StatsSnapshotKey is the Redis key holding the latest review queue
// summary, refreshed by the background snapshot job.
const StatsSnapshotKey = "stats:snapshot"

// AdminUsecase is the read-side projection backing the review console
type AdminUsecase struct {
	appRepo repositories.ApplicationRepository
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(appRepo repositories.ApplicationRepository) *AdminUsecase {
	return &AdminUsecase{appRepo: appRepo}
}

// ListApplications returns a filtered, paginated page of the review
// queue plus pagination metadata.
func (u *AdminUsecase) ListApplications(ctx context.Context, actor *entities.Session, filter entities.ApplicationFilter, page, pageSize int) ([]*entities.ApplicationRow, utils.PaginationMeta, error) {
	if !actor.IsAdmin() {
		return nil, utils.PaginationMeta{}, domainerrors.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationMeta{}, domainerrors.Validation("unknown application status")
	}

	params := utils.GetPaginationParams(page, pageSize)
	rows, total, err := u.appRepo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return rows, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// GetApplication returns one application for the review detail view
func (u *AdminUsecase) GetApplication(ctx context.Context, actor *entities.Session, id uuid.UUID) (*entities.Application, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}
	return u.appRepo.GetByID(ctx, id)
}

// ComputeStats summarizes the review queue. The snapshot job's cache
// entry is served when present; the database is the fallback, so the
// endpoint keeps working without Redis or a fresh snapshot. Drafts
// count toward the total but not toward any review bucket, so
// pending + accepted + rejected always equals the non-Draft count.
func (u *AdminUsecase) ComputeStats(ctx context.Context, actor *entities.Session) (*entities.ApplicationStats, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}

	if redis.GetClient() != nil {
		if raw, err := redis.Get(ctx, StatsSnapshotKey); err == nil {
			var stats entities.ApplicationStats
			if err := json.Unmarshal([]byte(raw), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	return u.computeStats(ctx)
}

// SnapshotStats recomputes the counters and stores them under
// StatsSnapshotKey. Only the background job calls this; request paths
// read the snapshot through ComputeStats.
func (u *AdminUsecase) SnapshotStats(ctx context.Context, ttl time.Duration) error {
	stats, err := u.computeStats(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return redis.Set(ctx, StatsSnapshotKey, string(payload), ttl)
}

func (u *AdminUsecase) computeStats(ctx context.Context) (*entities.ApplicationStats, error) {
	counts, err := u.appRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &entities.ApplicationStats{
		Pending:  counts[entities.StatusUnderReview],
		Accepted: counts[entities.StatusAccepted],
		Rejected: counts[entities.StatusRejected],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}
