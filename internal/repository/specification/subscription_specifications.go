package specification

import (
	"delivery-scheduler-be/internal/entity"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ByStatuses filters subscriptions whose status is one of the given values
type ByStatuses struct {
	Statuses []entity.SubscriptionStatus
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	values := lo.Map(s.Statuses, func(st entity.SubscriptionStatus, _ int) string { return string(st) })
	return db.Where("status IN ?", values)
}

// ByUserIDs filters subscriptions owned by the given customers
type ByUserIDs struct {
	UserIDs []uuid.UUID
}

func (s ByUserIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id IN ?", s.UserIDs)
}

// ByAdminPause filters subscriptions carrying a back-reference to a pause record
type ByAdminPause struct {
	PauseID uuid.UUID
}

func (s ByAdminPause) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("admin_pause_id = ?", s.PauseID)
}

// AdminPauseReconciliation matches every subscription a pause record may still hold:
// rows referencing the record, plus admin-paused rows that lost their back-reference
// and belong to the record's affected users (any user for an "all" record).
type AdminPauseReconciliation struct {
	PauseID  uuid.UUID
	UserIDs  []uuid.UUID
	AllUsers bool
}

// NewAdminPauseReconciliation builds the lookup for a pause record
func NewAdminPauseReconciliation(record *entity.AdminPauseRecord) AdminPauseReconciliation {
	return AdminPauseReconciliation{
		PauseID:  record.Id,
		UserIDs:  record.AffectedUserIds,
		AllUsers: record.PauseType == entity.PauseTypeAll,
	}
}

func (s AdminPauseReconciliation) Apply(db *gorm.DB) *gorm.DB {
	fresh := db.Session(&gorm.Session{NewDB: true})
	if !s.AllUsers && len(s.UserIDs) == 0 {
		return db.Where("admin_pause_id = ?", s.PauseID)
	}

	orphaned := fresh.Where("status = ? AND admin_pause_id IS NULL", string(entity.SubscriptionStatusAdminPaused))
	if !s.AllUsers {
		orphaned = orphaned.Where("user_id IN ?", s.UserIDs)
	}
	return db.Where(fresh.Where("admin_pause_id = ?", s.PauseID).Or(orphaned))
}

// Matches evaluates the same two clauses against an in-memory subscription
func (s AdminPauseReconciliation) Matches(sub *entity.Subscription) bool {
	if sub.AdminPauseId != nil && *sub.AdminPauseId == s.PauseID {
		return true
	}
	if sub.Status != entity.SubscriptionStatusAdminPaused || sub.AdminPauseId != nil {
		return false
	}
	return s.AllUsers || lo.Contains(s.UserIDs, sub.UserId)
}
