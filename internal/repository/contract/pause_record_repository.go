package contract

import (
	"context"
	"time"

	"delivery-scheduler-be/internal/entity"

	"github.com/google/uuid"
)

type PauseRecordRepository interface {
	Create(ctx context.Context, record *entity.AdminPauseRecord) error
	FindOne(ctx context.Context, id uuid.UUID) (*entity.AdminPauseRecord, error)
	FindAll(ctx context.Context, status *entity.PauseRecordStatus, limit, offset int) ([]*entity.AdminPauseRecord, error)
	FindExpired(ctx context.Context, now time.Time) ([]*entity.AdminPauseRecord, error)

	// MarkCompleted closes an active record; false when it was already completed
	MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time, completedBy string) (bool, error)
}
