package testutil

import (
	"context"
	"sort"
	"time"

	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/repository/contract"
	"delivery-scheduler-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type inMemorySubscriptionRepository struct {
	store *InMemoryStore
}

func (r *inMemorySubscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	if subscription.Id == uuid.Nil {
		subscription.Id = uuid.New()
	}
	now := time.Now()
	subscription.CreatedAt = now
	subscription.UpdatedAt = now

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.subscriptions[subscription.Id] = cloneSubscription(subscription)
	return nil
}

func (r *inMemorySubscriptionRepository) Update(ctx context.Context, subscription *entity.Subscription) error {
	if err := r.store.failure(OpSubscriptionUpdate, &subscription.Id); err != nil {
		return err
	}
	subscription.UpdatedAt = time.Now()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.subscriptions[subscription.Id] = cloneSubscription(subscription)
	return nil
}

func (r *inMemorySubscriptionRepository) FindOne(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	if err := r.store.failure(OpSubscriptionFind, &id); err != nil {
		return nil, err
	}
	return r.store.Subscription(id), nil
}

func (r *inMemorySubscriptionRepository) FindAll(ctx context.Context, filter contract.SubscriptionFilter) ([]*entity.Subscription, error) {
	if err := r.store.failure(OpSubscriptionFind, nil); err != nil {
		return nil, err
	}
	return r.list(filter.Matches), nil
}

func (r *inMemorySubscriptionRepository) Count(ctx context.Context, filter contract.SubscriptionFilter) (int, error) {
	if err := r.store.failure(OpSubscriptionCount, nil); err != nil {
		return 0, err
	}
	return len(r.list(filter.Matches)), nil
}

func (r *inMemorySubscriptionRepository) ApplyAdminPause(ctx context.Context, id uuid.UUID, fields entity.AdminPauseFields) (bool, error) {
	r.store.beforeWrite(OpApplyAdminPause, id)
	if err := r.writeFailure(ctx, OpApplyAdminPause, id); err != nil {
		return false, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.state.subscriptions[id]
	if !ok || sub.Status != entity.SubscriptionStatusActive {
		return false, nil
	}
	sub.Status = entity.SubscriptionStatusAdminPaused
	sub.AdminPauseId = lo.ToPtr(fields.PauseId)
	sub.AdminPauseStart = lo.ToPtr(fields.PauseStart)
	sub.AdminPauseEnd = cloneTime(fields.PauseEnd)
	sub.PauseDate = lo.ToPtr(fields.PausedAt)
	sub.PauseReason = lo.ToPtr(fields.Reason)
	sub.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemorySubscriptionRepository) FindForReconciliation(ctx context.Context, lookup specification.AdminPauseReconciliation) ([]*entity.Subscription, error) {
	if err := r.store.failure(OpReconcileLookup, nil); err != nil {
		return nil, err
	}
	if !lookup.AllUsers && len(lookup.UserIDs) == 0 {
		return r.list(func(s *entity.Subscription) bool {
			return s.AdminPauseId != nil && *s.AdminPauseId == lookup.PauseID
		}), nil
	}
	return r.list(lookup.Matches), nil
}

func (r *inMemorySubscriptionRepository) CountReferencing(ctx context.Context, pauseId uuid.UUID) (int, error) {
	if err := r.store.failure(OpSubscriptionCount, nil); err != nil {
		return 0, err
	}
	return len(r.list(func(s *entity.Subscription) bool {
		return s.AdminPauseId != nil && *s.AdminPauseId == pauseId
	})), nil
}

func (r *inMemorySubscriptionRepository) ReleaseAdminPause(ctx context.Context, id uuid.UUID, pauseId uuid.UUID, nextDelivery time.Time) (bool, error) {
	r.store.beforeWrite(OpReleaseAdminPause, id)
	if err := r.writeFailure(ctx, OpReleaseAdminPause, id); err != nil {
		return false, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.state.subscriptions[id]
	if !ok || sub.Status != entity.SubscriptionStatusAdminPaused {
		return false, nil
	}
	if sub.AdminPauseId != nil && *sub.AdminPauseId != pauseId {
		return false, nil
	}
	sub.Status = entity.SubscriptionStatusActive
	sub.NextDeliveryDate = lo.ToPtr(nextDelivery)
	sub.ClearPause()
	sub.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemorySubscriptionRepository) ClearStaleAdminPause(ctx context.Context, id uuid.UUID, pauseId uuid.UUID) (bool, error) {
	r.store.beforeWrite(OpClearStalePause, id)
	if err := r.writeFailure(ctx, OpClearStalePause, id); err != nil {
		return false, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.state.subscriptions[id]
	if !ok || sub.AdminPauseId == nil || *sub.AdminPauseId != pauseId || sub.Status == entity.SubscriptionStatusAdminPaused {
		return false, nil
	}
	sub.AdminPauseId = nil
	sub.AdminPauseStart = nil
	sub.AdminPauseEnd = nil
	if sub.Status == entity.SubscriptionStatusActive {
		sub.PauseDate = nil
		sub.PauseReason = nil
	}
	sub.UpdatedAt = time.Now()
	return true, nil
}

// writeFailure honours injected errors and an already expired context, like a real driver would
func (r *inMemorySubscriptionRepository) writeFailure(ctx context.Context, op string, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.failure(op, &id)
}

func (r *inMemorySubscriptionRepository) list(match func(*entity.Subscription) bool) []*entity.Subscription {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	subs := make([]*entity.Subscription, 0)
	for _, s := range r.store.state.subscriptions {
		if match(s) {
			subs = append(subs, cloneSubscription(s))
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].Id.String() < subs[j].Id.String()
		}
		return subs[i].CreatedAt.Before(subs[j].CreatedAt)
	})
	return subs
}
