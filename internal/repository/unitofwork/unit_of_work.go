package unitofwork

import (
	"context"

	"delivery-scheduler-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SchedulePolicyRepository() contract.SchedulePolicyRepository
	SubscriptionRepository() contract.SubscriptionRepository
	PauseRecordRepository() contract.PauseRecordRepository
}
