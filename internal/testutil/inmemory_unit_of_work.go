package testutil

import (
	"context"
	"fmt"

	"delivery-scheduler-be/internal/repository/contract"
)

// InMemoryUnitOfWork snapshots the store on Begin and restores it on Rollback
type InMemoryUnitOfWork struct {
	store    *InMemoryStore
	snapshot *state
}

func (u *InMemoryUnitOfWork) Begin(ctx context.Context) error {
	if u.snapshot != nil {
		return fmt.Errorf("transaction already started")
	}
	u.snapshot = u.store.snapshot()
	return nil
}

func (u *InMemoryUnitOfWork) Commit() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.snapshot = nil
	return nil
}

func (u *InMemoryUnitOfWork) Rollback() error {
	if u.snapshot == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.restore(u.snapshot)
	u.snapshot = nil
	return nil
}

func (u *InMemoryUnitOfWork) SchedulePolicyRepository() contract.SchedulePolicyRepository {
	return &inMemorySchedulePolicyRepository{store: u.store}
}

func (u *InMemoryUnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &inMemorySubscriptionRepository{store: u.store}
}

func (u *InMemoryUnitOfWork) PauseRecordRepository() contract.PauseRecordRepository {
	return &inMemoryPauseRecordRepository{store: u.store}
}
