package contract

import (
	"context"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// SubscriptionFilter narrows subscription lookups. Empty fields do not filter.
type SubscriptionFilter struct {
	Statuses   []entity.SubscriptionStatus
	UserIds    []uuid.UUID
	Categories []constant.Category
}

// Matches evaluates the filter against a single subscription
func (f SubscriptionFilter) Matches(s *entity.Subscription) bool {
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, s.Status) {
		return false
	}
	if len(f.UserIds) > 0 && !lo.Contains(f.UserIds, s.UserId) {
		return false
	}
	if len(f.Categories) > 0 && !lo.Contains(f.Categories, s.Category) {
		return false
	}
	return true
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	Update(ctx context.Context, subscription *entity.Subscription) error
	FindOne(ctx context.Context, id uuid.UUID) (*entity.Subscription, error)
	FindAll(ctx context.Context, filter SubscriptionFilter) ([]*entity.Subscription, error)
	Count(ctx context.Context, filter SubscriptionFilter) (int, error)

	// ApplyAdminPause flips one active subscription to admin_paused. It reports false when
	// the row was no longer active at write time.
	ApplyAdminPause(ctx context.Context, id uuid.UUID, fields entity.AdminPauseFields) (bool, error)

	// FindForReconciliation runs the two-clause reactivation lookup
	FindForReconciliation(ctx context.Context, lookup specification.AdminPauseReconciliation) ([]*entity.Subscription, error)
	CountReferencing(ctx context.Context, pauseId uuid.UUID) (int, error)

	// ReleaseAdminPause reactivates an admin_paused row held by the pause (or orphaned),
	// clearing pause fields and setting the next delivery date.
	ReleaseAdminPause(ctx context.Context, id uuid.UUID, pauseId uuid.UUID, nextDelivery time.Time) (bool, error)

	// ClearStaleAdminPause drops a back-reference left on a row that is not admin_paused
	ClearStaleAdminPause(ctx context.Context, id uuid.UUID, pauseId uuid.UUID) (bool, error)
}
