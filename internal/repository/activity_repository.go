package repository

import (
	"context"

	"teamtasks/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRepository is an append-only sink for audit entries. Business logic
// writes here after its own mutation commits and never reads entries back to
// make decisions.
type ActivityRepository struct {
	db *gorm.DB
}

type ActivityRepositoryInterface interface {
	Record(ctx context.Context, entry *model.ActivityLog) error
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.ActivityLog, error)
}

var _ ActivityRepositoryInterface = (*ActivityRepository)(nil)

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record appends one audit entry. It runs outside the caller's transaction:
// a failure here must never unwind the business mutation that triggered it.
func (r *ActivityRepository) Record(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByTeam retrieves the team's audit trail, newest first.
func (r *ActivityRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("timestamp DESC").
		Find(&entries).Error
	return entries, err
}
