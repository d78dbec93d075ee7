package testutil

import (
	"context"
	"sort"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"

	"github.com/google/uuid"
)

type inMemorySchedulePolicyRepository struct {
	store *InMemoryStore
}

func (r *inMemorySchedulePolicyRepository) FindByCategory(ctx context.Context, category constant.Category) (*entity.SchedulePolicy, error) {
	if err := r.store.failure(OpPolicyFind, nil); err != nil {
		return nil, err
	}
	return r.store.Policy(category), nil
}

func (r *inMemorySchedulePolicyRepository) FindAll(ctx context.Context) ([]*entity.SchedulePolicy, error) {
	if err := r.store.failure(OpPolicyFind, nil); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	policies := make([]*entity.SchedulePolicy, 0, len(r.store.state.policies))
	for _, p := range r.store.state.policies {
		policies = append(policies, clonePolicy(p))
	}
	sort.Slice(policies, func(i, j int) bool { return policies[i].Category < policies[j].Category })
	return policies, nil
}

func (r *inMemorySchedulePolicyRepository) Save(ctx context.Context, policy *entity.SchedulePolicy) error {
	if err := r.store.failure(OpPolicySave, nil); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.policies[policy.Category] = clonePolicy(policy)
	return nil
}

func (r *inMemorySchedulePolicyRepository) CreateIfMissing(ctx context.Context, policy *entity.SchedulePolicy) (bool, error) {
	if err := r.store.failure(OpPolicySave, nil); err != nil {
		return false, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.state.policies[policy.Category]; exists {
		return false, nil
	}
	r.store.state.policies[policy.Category] = clonePolicy(policy)
	return true, nil
}

func (r *inMemorySchedulePolicyRepository) CreateAudit(ctx context.Context, audit *entity.SchedulePolicyAudit) error {
	if err := r.store.failure(OpPolicyAudit, nil); err != nil {
		return err
	}
	if audit.Id == uuid.Nil {
		audit.Id = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.audits = append(r.store.state.audits, cloneAudit(audit))
	return nil
}

func (r *inMemorySchedulePolicyRepository) FindAudits(ctx context.Context, category *constant.Category, limit int) ([]*entity.SchedulePolicyAudit, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	audits := make([]*entity.SchedulePolicyAudit, 0)
	for i := len(r.store.state.audits) - 1; i >= 0; i-- {
		a := r.store.state.audits[i]
		if category != nil && a.Category != *category {
			continue
		}
		audits = append(audits, cloneAudit(a))
	}
	// newest first; later inserts win timestamp ties
	sort.SliceStable(audits, func(i, j int) bool { return audits[i].CreatedAt.After(audits[j].CreatedAt) })
	if limit > 0 && len(audits) > limit {
		audits = audits[:limit]
	}
	return audits, nil
}
