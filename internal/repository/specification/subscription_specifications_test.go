package specification

import (
	"testing"

	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db
}

func reconciliationSQL(db *gorm.DB, spec Specification) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.Subscription
		return spec.Apply(tx.Model(&model.Subscription{})).Find(&rows)
	})
}

func TestAdminPauseReconciliation_SelectedUsers(t *testing.T) {
	pauseId := uuid.New()
	userId := uuid.New()
	spec := NewAdminPauseReconciliation(&entity.AdminPauseRecord{
		Id:              pauseId,
		PauseType:       entity.PauseTypeSelected,
		AffectedUserIds: []uuid.UUID{userId},
	})

	sql := reconciliationSQL(dryRunDB(t), spec)

	assert.Contains(t, sql, `"subscriptions"`)
	assert.Contains(t, sql, "admin_pause_id = '"+pauseId.String()+"'")
	assert.Contains(t, sql, " OR ")
	assert.Contains(t, sql, "status = 'admin_paused' AND admin_pause_id IS NULL")
	assert.Contains(t, sql, "user_id IN ('"+userId.String()+"')")
}

func TestAdminPauseReconciliation_AllUsers(t *testing.T) {
	pauseId := uuid.New()
	spec := NewAdminPauseReconciliation(&entity.AdminPauseRecord{
		Id:        pauseId,
		PauseType: entity.PauseTypeAll,
	})

	sql := reconciliationSQL(dryRunDB(t), spec)

	assert.Contains(t, sql, "admin_pause_id = '"+pauseId.String()+"'")
	assert.Contains(t, sql, "admin_pause_id IS NULL")
	assert.NotContains(t, sql, "user_id IN")
}

func TestAdminPauseReconciliation_NoUsersOnlyFollowsBackReference(t *testing.T) {
	pauseId := uuid.New()
	spec := AdminPauseReconciliation{PauseID: pauseId}

	sql := reconciliationSQL(dryRunDB(t), spec)

	assert.Contains(t, sql, "admin_pause_id = '"+pauseId.String()+"'")
	assert.NotContains(t, sql, "IS NULL")
}

func TestAdminPauseReconciliation_Matches(t *testing.T) {
	pauseId := uuid.New()
	otherPause := uuid.New()
	member := uuid.New()
	spec := AdminPauseReconciliation{PauseID: pauseId, UserIDs: []uuid.UUID{member}}

	tests := []struct {
		name string
		sub  entity.Subscription
		want bool
	}{
		{"references record", entity.Subscription{Status: entity.SubscriptionStatusActive, AdminPauseId: &pauseId}, true},
		{"orphaned member", entity.Subscription{Status: entity.SubscriptionStatusAdminPaused, UserId: member}, true},
		{"orphaned stranger", entity.Subscription{Status: entity.SubscriptionStatusAdminPaused, UserId: uuid.New()}, false},
		{"held by another record", entity.Subscription{Status: entity.SubscriptionStatusAdminPaused, UserId: member, AdminPauseId: &otherPause}, false},
		{"active member", entity.Subscription{Status: entity.SubscriptionStatusActive, UserId: member}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spec.Matches(&tt.sub))
		})
	}
}
