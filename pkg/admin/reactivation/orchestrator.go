package reactivation

import (
	"context"
	"sort"
	"strings"
	"time"

	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/repository/specification"
	"delivery-scheduler-be/internal/repository/unitofwork"
	adminEvents "delivery-scheduler-be/pkg/admin/events"
	"delivery-scheduler-be/pkg/admin/pause"
	"delivery-scheduler-be/pkg/delivery"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

type Scope string

const (
	// ScopeAll releases everything the record still holds and closes it
	ScopeAll Scope = "all"
	// ScopeSelected releases only the listed subscriptions
	ScopeSelected Scope = "selected"

	// SystemActor completes pauses on behalf of the scheduler
	SystemActor = "system:scheduler"
)

type Request struct {
	PauseRecordId   uuid.UUID
	Scope           Scope
	SubscriptionIds []uuid.UUID
	ActorId         string
}

// Result is the outcome of reactivating one pause record
type Result struct {
	Record           *entity.AdminPauseRecord
	ReactivatedCount int
	ReconciledCount  int
	SkippedCount     int
	Completed        bool
	Errors           []pause.ItemError
}

// RecordError is a pause record a batch reactivation could not process at all
type RecordError struct {
	PauseRecordId uuid.UUID
	Err           error
}

// BatchResult is the outcome of reactivating several pause records
type BatchResult struct {
	Results []*Result
	Failed  []RecordError
}

// Orchestrator reverses administrative pauses
type Orchestrator struct {
	uowFactory unitofwork.RepositoryFactory
	policies   delivery.PolicyResolver
	calendar   delivery.Calendar
	publisher  adminEvents.Publisher
	logger     logger.ILogger
	cfg        pause.Config
	now        func() time.Time
}

func NewOrchestrator(
	uowFactory unitofwork.RepositoryFactory,
	policies delivery.PolicyResolver,
	calendar delivery.Calendar,
	publisher adminEvents.Publisher,
	logger logger.ILogger,
	cfg pause.Config,
	now func() time.Time,
) *Orchestrator {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 8
	}
	if cfg.RowTimeout <= 0 {
		cfg.RowTimeout = 10 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		uowFactory: uowFactory,
		policies:   policies,
		calendar:   calendar,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
		now:        now,
	}
}

// Reactivate restores the subscriptions a pause record holds. The lookup matches rows carrying
// the record's id and admin-paused rows of the affected users that lost their back-reference.
func (o *Orchestrator) Reactivate(ctx context.Context, req Request) (*Result, error) {
	req.ActorId = strings.TrimSpace(req.ActorId)
	req.SubscriptionIds = lo.Uniq(req.SubscriptionIds)
	if err := validate(req); err != nil {
		return nil, err
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.PauseRecordRepository().FindOne(ctx, req.PauseRecordId)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load pause record").
			Mark(ierr.ErrDatabase)
	}
	if record == nil {
		return nil, ierr.NewError("pause record not found").
			WithHintf("Pause record %s does not exist", req.PauseRecordId).
			Mark(ierr.ErrNotFound)
	}
	// selected rows of a completed record may still be released as follow-up of earlier failures
	if !record.IsActive() && req.Scope == ScopeAll {
		return nil, ierr.NewError("pause record already completed").
			WithHintf("Pause record %s is already completed", record.Id).
			Mark(ierr.ErrInvalidOperation)
	}

	// 1. Resolve targets with the two-clause reconciliation lookup
	candidates, err := uow.SubscriptionRepository().FindForReconciliation(ctx, specification.NewAdminPauseReconciliation(record))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to resolve subscriptions held by the pause").
			Mark(ierr.ErrDatabase)
	}

	result := &Result{Record: record, Errors: []pause.ItemError{}}
	targets := candidates
	if req.Scope == ScopeSelected {
		held := lo.KeyBy(candidates, func(s *entity.Subscription) uuid.UUID { return s.Id })
		targets = make([]*entity.Subscription, 0, len(req.SubscriptionIds))
		for _, id := range req.SubscriptionIds {
			sub, ok := held[id]
			if !ok {
				result.Errors = append(result.Errors, pause.ItemError{
					SubscriptionId: id,
					Err: ierr.NewError("subscription not held by pause").
						WithHintf("Subscription %s is not held by pause record %s", id, record.Id).
						Mark(ierr.ErrNotFound),
				})
				continue
			}
			targets = append(targets, sub)
		}
	}

	// 2. Release every target independently
	o.release(ctx, record, targets, result)

	// 3. Close the record
	if record.IsActive() {
		if err := o.complete(ctx, record, req, result); err != nil {
			o.logger.Error("ADMIN_REACTIVATE", "Failed to complete pause record", map[string]interface{}{
				"pause_record_id": record.Id,
				"error":           err.Error(),
			})
			result.Errors = append(result.Errors, pause.ItemError{Err: err})
		}
	}

	o.logger.Info("ADMIN_REACTIVATE", "Reactivation finished", map[string]interface{}{
		"pause_record_id": record.Id,
		"scope":           req.Scope,
		"reactivated":     result.ReactivatedCount,
		"reconciled":      result.ReconciledCount,
		"skipped":         result.SkippedCount,
		"failed":          len(result.Errors),
		"completed":       result.Completed,
	})

	if result.Completed {
		o.publisher.PublishPauseCompleted(ctx, record, result.ReactivatedCount)
	}
	return result, nil
}

// ReactivateAllActive releases every active pause record
func (o *Orchestrator) ReactivateAllActive(ctx context.Context, actorId string) (*BatchResult, error) {
	uow := o.uowFactory.NewUnitOfWork(ctx)
	status := entity.PauseRecordStatusActive
	records, err := uow.PauseRecordRepository().FindAll(ctx, &status, 0, 0)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list active pause records").
			Mark(ierr.ErrDatabase)
	}
	return o.reactivateRecords(ctx, records, actorId), nil
}

// ReactivateExpired releases active pause records whose end date has passed
func (o *Orchestrator) ReactivateExpired(ctx context.Context) (*BatchResult, error) {
	uow := o.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.PauseRecordRepository().FindExpired(ctx, o.now())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expired pause records").
			Mark(ierr.ErrDatabase)
	}
	return o.reactivateRecords(ctx, records, SystemActor), nil
}

func (o *Orchestrator) reactivateRecords(ctx context.Context, records []*entity.AdminPauseRecord, actorId string) *BatchResult {
	batch := &BatchResult{Results: []*Result{}, Failed: []RecordError{}}
	for _, record := range records {
		res, err := o.Reactivate(ctx, Request{
			PauseRecordId: record.Id,
			Scope:         ScopeAll,
			ActorId:       actorId,
		})
		if err != nil {
			batch.Failed = append(batch.Failed, RecordError{PauseRecordId: record.Id, Err: err})
			continue
		}
		batch.Results = append(batch.Results, res)
	}
	return batch
}

type outcome struct {
	index       int
	id          uuid.UUID
	reactivated bool
	reconciled  bool
	err         error
}

func (o *Orchestrator) release(ctx context.Context, record *entity.AdminPauseRecord, targets []*entity.Subscription, result *Result) {
	now := o.now()

	p := pool.NewWithResults[outcome]().WithMaxGoroutines(o.cfg.PoolSize)
	for i, sub := range targets {
		i, sub := i, sub
		p.Go(func() outcome {
			out := outcome{index: i, id: sub.Id}
			if sub.Status == entity.SubscriptionStatusAdminPaused {
				out.reactivated, out.err = o.releaseOne(ctx, record.Id, sub, now)
			} else {
				out.reconciled, out.err = o.clearOne(ctx, record.Id, sub)
			}
			return out
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	for _, out := range outcomes {
		switch {
		case out.err != nil:
			result.Errors = append(result.Errors, pause.ItemError{SubscriptionId: out.id, Err: out.err})
		case out.reactivated:
			result.ReactivatedCount++
		case out.reconciled:
			result.ReconciledCount++
		default:
			result.SkippedCount++
		}
	}
}

// releaseOne reactivates one admin-paused row and recomputes its next delivery from now
func (o *Orchestrator) releaseOne(ctx context.Context, pauseId uuid.UUID, sub *entity.Subscription, now time.Time) (bool, error) {
	rowCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.RowTimeout)
	defer cancel()

	policy, err := o.policies.Resolve(rowCtx, sub.Category)
	if err != nil {
		return false, err
	}
	next, err := o.calendar.NextDeliveryDate(now, policy)
	if err != nil {
		return false, err
	}

	uow := o.uowFactory.NewUnitOfWork(rowCtx)
	released, err := uow.SubscriptionRepository().ReleaseAdminPause(rowCtx, sub.Id, pauseId, next)
	if err != nil {
		o.logger.Warn("ADMIN_REACTIVATE", "Failed to reactivate subscription", map[string]interface{}{
			"subscription_id": sub.Id,
			"pause_record_id": pauseId,
			"error":           err.Error(),
		})
		return false, err
	}
	return released, nil
}

// clearOne drops a stale pause window from a row a failed pause left behind
func (o *Orchestrator) clearOne(ctx context.Context, pauseId uuid.UUID, sub *entity.Subscription) (bool, error) {
	rowCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.RowTimeout)
	defer cancel()

	uow := o.uowFactory.NewUnitOfWork(rowCtx)
	cleared, err := uow.SubscriptionRepository().ClearStaleAdminPause(rowCtx, sub.Id, pauseId)
	if err != nil {
		o.logger.Warn("ADMIN_REACTIVATE", "Failed to clear stale pause window", map[string]interface{}{
			"subscription_id": sub.Id,
			"status":          sub.Status,
			"pause_record_id": pauseId,
			"error":           err.Error(),
		})
		return false, err
	}
	return cleared, nil
}

func (o *Orchestrator) complete(ctx context.Context, record *entity.AdminPauseRecord, req Request, result *Result) error {
	uow := o.uowFactory.NewUnitOfWork(ctx)

	if req.Scope == ScopeSelected {
		remaining, err := uow.SubscriptionRepository().CountReferencing(ctx, record.Id)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
	}

	completedAt := o.now()
	completed, err := uow.PauseRecordRepository().MarkCompleted(ctx, record.Id, completedAt, req.ActorId)
	if err != nil {
		return err
	}
	if completed {
		record.Status = entity.PauseRecordStatusCompleted
		record.CompletedAt = &completedAt
		record.CompletedBy = &req.ActorId
		result.Completed = true
	}
	return nil
}

func validate(req Request) error {
	if req.PauseRecordId == uuid.Nil {
		return ierr.NewError("missing pause record").
			WithHint("pause_record_id is required").
			Mark(ierr.ErrValidation)
	}
	switch req.Scope {
	case ScopeAll:
	case ScopeSelected:
		if len(req.SubscriptionIds) == 0 {
			return ierr.NewError("no subscriptions selected").
				WithHint("subscription_ids is required when scope is selected").
				Mark(ierr.ErrValidation)
		}
	default:
		return ierr.NewError("invalid scope").
			WithHintf("scope must be all or selected, got %q", req.Scope).
			Mark(ierr.ErrValidation)
	}
	if req.ActorId == "" {
		return ierr.NewError("missing actor").
			WithHint("actor_id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
