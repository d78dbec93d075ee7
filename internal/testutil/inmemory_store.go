package testutil

import (
	"context"
	"sync"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Operation names accepted by FailOn and FailRow
const (
	OpPolicyFind         = "policy.find"
	OpPolicySave         = "policy.save"
	OpPolicyAudit        = "policy.audit"
	OpSubscriptionFind   = "subscription.find"
	OpSubscriptionCount  = "subscription.count"
	OpSubscriptionUpdate = "subscription.update"
	OpApplyAdminPause    = "subscription.apply_admin_pause"
	OpReconcileLookup    = "subscription.reconcile_lookup"
	OpReleaseAdminPause  = "subscription.release_admin_pause"
	OpClearStalePause    = "subscription.clear_stale_pause"
	OpPauseCreate        = "pause.create"
	OpPauseFind          = "pause.find"
	OpPauseComplete      = "pause.complete"
)

type state struct {
	policies      map[constant.Category]*entity.SchedulePolicy
	audits        []*entity.SchedulePolicyAudit
	subscriptions map[uuid.UUID]*entity.Subscription
	records       map[uuid.UUID]*entity.AdminPauseRecord
}

func (s *state) clone() *state {
	c := &state{
		policies:      make(map[constant.Category]*entity.SchedulePolicy, len(s.policies)),
		audits:        make([]*entity.SchedulePolicyAudit, len(s.audits)),
		subscriptions: make(map[uuid.UUID]*entity.Subscription, len(s.subscriptions)),
		records:       make(map[uuid.UUID]*entity.AdminPauseRecord, len(s.records)),
	}
	for k, v := range s.policies {
		c.policies[k] = clonePolicy(v)
	}
	for i, v := range s.audits {
		c.audits[i] = cloneAudit(v)
	}
	for k, v := range s.subscriptions {
		c.subscriptions[k] = cloneSubscription(v)
	}
	for k, v := range s.records {
		c.records[k] = cloneRecord(v)
	}
	return c
}

// InMemoryStore is a shared fake database behind the unit of work contracts.
// Every read returns copies, so callers never alias stored rows.
type InMemoryStore struct {
	mu    sync.Mutex
	state *state

	failMu  sync.Mutex
	opFails map[string]error
	rowFail map[string]map[uuid.UUID]error

	// BeforeWrite runs ahead of every conditional subscription write, outside the store lock
	BeforeWrite func(op string, id uuid.UUID)
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		state: &state{
			policies:      make(map[constant.Category]*entity.SchedulePolicy),
			subscriptions: make(map[uuid.UUID]*entity.Subscription),
			records:       make(map[uuid.UUID]*entity.AdminPauseRecord),
		},
		opFails: make(map[string]error),
		rowFail: make(map[string]map[uuid.UUID]error),
	}
}

// NewUnitOfWork satisfies unitofwork.RepositoryFactory
func (s *InMemoryStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &InMemoryUnitOfWork{store: s}
}

// FailOn makes every call of op return err until cleared with a nil err
func (s *InMemoryStore) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.opFails, op)
		return
	}
	s.opFails[op] = err
}

// FailRow makes op return err for a single subscription or record id
func (s *InMemoryStore) FailRow(op string, id uuid.UUID, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.rowFail[op] == nil {
		s.rowFail[op] = make(map[uuid.UUID]error)
	}
	if err == nil {
		delete(s.rowFail[op], id)
		return
	}
	s.rowFail[op][id] = err
}

func (s *InMemoryStore) failure(op string, id *uuid.UUID) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err, ok := s.opFails[op]; ok {
		return err
	}
	if id != nil {
		if err, ok := s.rowFail[op][*id]; ok {
			return err
		}
	}
	return nil
}

func (s *InMemoryStore) beforeWrite(op string, id uuid.UUID) {
	if s.BeforeWrite != nil {
		s.BeforeWrite(op, id)
	}
}

func (s *InMemoryStore) snapshot() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *InMemoryStore) restore(snapshot *state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snapshot
}

// Seeding and inspection helpers

func (s *InMemoryStore) SeedPolicy(policy entity.SchedulePolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.policies[policy.Category] = clonePolicy(&policy)
}

// SeedDefaultPolicies stores the built-in policy of every category
func (s *InMemoryStore) SeedDefaultPolicies() {
	for _, category := range constant.Categories {
		policy, _ := entity.DefaultSchedulePolicy(category)
		s.SeedPolicy(policy)
	}
}

func (s *InMemoryStore) SeedSubscription(subscription entity.Subscription) *entity.Subscription {
	if subscription.Id == uuid.Nil {
		subscription.Id = uuid.New()
	}
	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.subscriptions[subscription.Id] = cloneSubscription(&subscription)
	return cloneSubscription(&subscription)
}

func (s *InMemoryStore) SeedPauseRecord(record entity.AdminPauseRecord) *entity.AdminPauseRecord {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.records[record.Id] = cloneRecord(&record)
	return cloneRecord(&record)
}

// MutateSubscription edits a stored row directly, bypassing repository rules
func (s *InMemoryStore) MutateSubscription(id uuid.UUID, fn func(*entity.Subscription)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.state.subscriptions[id]; ok {
		fn(sub)
	}
}

func (s *InMemoryStore) Policy(category constant.Category) *entity.SchedulePolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePolicy(s.state.policies[category])
}

func (s *InMemoryStore) Audits() []*entity.SchedulePolicyAudit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Map(s.state.audits, func(a *entity.SchedulePolicyAudit, _ int) *entity.SchedulePolicyAudit { return cloneAudit(a) })
}

func (s *InMemoryStore) Subscription(id uuid.UUID) *entity.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSubscription(s.state.subscriptions[id])
}

func (s *InMemoryStore) PauseRecord(id uuid.UUID) *entity.AdminPauseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecord(s.state.records[id])
}

func (s *InMemoryStore) PauseRecords() []*entity.AdminPauseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := lo.Values(s.state.records)
	return lo.Map(records, func(r *entity.AdminPauseRecord, _ int) *entity.AdminPauseRecord { return cloneRecord(r) })
}

func clonePolicy(p *entity.SchedulePolicy) *entity.SchedulePolicy {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneAudit(a *entity.SchedulePolicyAudit) *entity.SchedulePolicyAudit {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneSubscription(s *entity.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	c := *s
	c.NextDeliveryDate = cloneTime(s.NextDeliveryDate)
	c.PauseDate = cloneTime(s.PauseDate)
	c.ReactivationDeadline = cloneTime(s.ReactivationDeadline)
	c.AdminPauseStart = cloneTime(s.AdminPauseStart)
	c.AdminPauseEnd = cloneTime(s.AdminPauseEnd)
	if s.PauseReason != nil {
		c.PauseReason = lo.ToPtr(*s.PauseReason)
	}
	if s.AdminPauseId != nil {
		c.AdminPauseId = lo.ToPtr(*s.AdminPauseId)
	}
	return &c
}

func cloneRecord(r *entity.AdminPauseRecord) *entity.AdminPauseRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.AffectedUserIds = append([]uuid.UUID(nil), r.AffectedUserIds...)
	c.EndDate = cloneTime(r.EndDate)
	c.CompletedAt = cloneTime(r.CompletedAt)
	if r.CompletedBy != nil {
		c.CompletedBy = lo.ToPtr(*r.CompletedBy)
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
