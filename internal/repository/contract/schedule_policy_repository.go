package contract

import (
	"context"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
)

type SchedulePolicyRepository interface {
	FindByCategory(ctx context.Context, category constant.Category) (*entity.SchedulePolicy, error)
	FindAll(ctx context.Context) ([]*entity.SchedulePolicy, error)
	Save(ctx context.Context, policy *entity.SchedulePolicy) error
	// CreateIfMissing inserts the policy unless the category already has one
	CreateIfMissing(ctx context.Context, policy *entity.SchedulePolicy) (bool, error)

	// Audit trail (append-only)
	CreateAudit(ctx context.Context, audit *entity.SchedulePolicyAudit) error
	FindAudits(ctx context.Context, category *constant.Category, limit int) ([]*entity.SchedulePolicyAudit, error)
}
