package pause

import (
	"context"
	"sort"
	"strings"
	"time"

	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/repository/contract"
	"delivery-scheduler-be/internal/repository/unitofwork"
	adminEvents "delivery-scheduler-be/pkg/admin/events"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// Config bounds the load a bulk pause puts on the store
type Config struct {
	PoolSize   int
	RowTimeout time.Duration
}

// Request describes one administrative pause action
type Request struct {
	PauseType entity.PauseType
	UserIds   []uuid.UUID
	StartDate time.Time
	EndDate   *time.Time
	Reason    string
	ActorId   string
}

// ItemError is a per-subscription failure; it never aborts the rest of the batch
type ItemError struct {
	SubscriptionId uuid.UUID
	Err            error
}

// Result is the partial-success outcome of a bulk pause
type Result struct {
	Record         *entity.AdminPauseRecord
	ProcessedCount int
	SkippedCount   int
	Errors         []ItemError
}

// Orchestrator applies administrative pauses across many subscriptions
type Orchestrator struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  adminEvents.Publisher
	logger     logger.ILogger
	cfg        Config
	now        func() time.Time
}

func NewOrchestrator(
	uowFactory unitofwork.RepositoryFactory,
	publisher adminEvents.Publisher,
	logger logger.ILogger,
	cfg Config,
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
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
		now:        now,
	}
}

// Pause persists the pause record first, then flips every targeted active subscription
// to admin_paused independently. Row failures are reported, not returned as an error.
func (o *Orchestrator) Pause(ctx context.Context, req Request) (*Result, error) {
	req = normalize(req)
	if err := validate(req); err != nil {
		return nil, err
	}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	filter := targetFilter(req.PauseType, req.UserIds)

	// 1. Count targets
	count, err := uow.SubscriptionRepository().Count(ctx, filter)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to count subscriptions to pause").
			Mark(ierr.ErrDatabase)
	}

	// 2. Record the intent before touching any subscription
	record := &entity.AdminPauseRecord{
		Id:                        uuid.New(),
		PauseType:                 req.PauseType,
		AffectedUserIds:           req.UserIds,
		StartDate:                 req.StartDate,
		EndDate:                   req.EndDate,
		Reason:                    req.Reason,
		ActorId:                   req.ActorId,
		Status:                    entity.PauseRecordStatusActive,
		AffectedSubscriptionCount: count,
	}
	if err := uow.PauseRecordRepository().Create(ctx, record); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create pause record").
			Mark(ierr.ErrDatabase)
	}

	o.logger.Info("ADMIN_PAUSE", "Pause record created", map[string]interface{}{
		"pause_record_id": record.Id,
		"pause_type":      record.PauseType,
		"targets":         count,
		"actor_id":        record.ActorId,
	})

	// 3. Apply to every target
	result := o.apply(ctx, record)

	o.publisher.PublishPauseCreated(ctx, record, result.ProcessedCount, len(result.Errors))
	return result, nil
}

// RetryPause re-applies an active pause record to targets still left active,
// e.g. after a partially failed Pause call
func (o *Orchestrator) RetryPause(ctx context.Context, pauseRecordId uuid.UUID) (*Result, error) {
	uow := o.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.PauseRecordRepository().FindOne(ctx, pauseRecordId)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load pause record").
			Mark(ierr.ErrDatabase)
	}
	if record == nil {
		return nil, ierr.NewError("pause record not found").
			WithHintf("Pause record %s does not exist", pauseRecordId).
			Mark(ierr.ErrNotFound)
	}
	if !record.IsActive() {
		return nil, ierr.NewError("pause record already completed").
			WithHint("A completed pause cannot be re-applied").
			Mark(ierr.ErrInvalidOperation)
	}

	o.logger.Info("ADMIN_PAUSE", "Retrying pause record", map[string]interface{}{"pause_record_id": record.Id})
	return o.apply(ctx, record), nil
}

type outcome struct {
	index  int
	id     uuid.UUID
	paused bool
	err    error
}

func (o *Orchestrator) apply(ctx context.Context, record *entity.AdminPauseRecord) *Result {
	result := &Result{Record: record, Errors: []ItemError{}}

	uow := o.uowFactory.NewUnitOfWork(ctx)
	targets, err := uow.SubscriptionRepository().FindAll(ctx, targetFilter(record.PauseType, record.AffectedUserIds))
	if err != nil {
		// the record stays active so RetryPause can pick the batch up again
		o.logger.Error("ADMIN_PAUSE", "Failed to load pause targets", map[string]interface{}{
			"pause_record_id": record.Id,
			"error":           err.Error(),
		})
		result.Errors = append(result.Errors, ItemError{Err: err})
		return result
	}

	fields := entity.AdminPauseFields{
		PauseId:    record.Id,
		PauseStart: record.StartDate,
		PauseEnd:   record.EndDate,
		PausedAt:   o.now(),
		Reason:     record.Reason,
	}

	p := pool.NewWithResults[outcome]().WithMaxGoroutines(o.cfg.PoolSize)
	for i, sub := range targets {
		i, id := i, sub.Id
		p.Go(func() outcome {
			paused, err := o.pauseOne(ctx, id, fields)
			return outcome{index: i, id: id, paused: paused, err: err}
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].index < outcomes[j].index })

	for _, out := range outcomes {
		switch {
		case out.err != nil:
			result.Errors = append(result.Errors, ItemError{SubscriptionId: out.id, Err: out.err})
		case out.paused:
			result.ProcessedCount++
		default:
			result.SkippedCount++
		}
	}

	o.logger.Info("ADMIN_PAUSE", "Pause applied", map[string]interface{}{
		"pause_record_id": record.Id,
		"processed":       result.ProcessedCount,
		"skipped":         result.SkippedCount,
		"failed":          len(result.Errors),
	})
	return result
}

// pauseOne is its own unit of work with its own deadline; the caller's cancellation does not stop it
func (o *Orchestrator) pauseOne(ctx context.Context, id uuid.UUID, fields entity.AdminPauseFields) (bool, error) {
	rowCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.RowTimeout)
	defer cancel()

	uow := o.uowFactory.NewUnitOfWork(rowCtx)
	paused, err := uow.SubscriptionRepository().ApplyAdminPause(rowCtx, id, fields)
	if err != nil {
		o.logger.Warn("ADMIN_PAUSE", "Failed to pause subscription", map[string]interface{}{
			"subscription_id": id,
			"pause_record_id": fields.PauseId,
			"error":           err.Error(),
		})
		return false, err
	}
	return paused, nil
}

func targetFilter(pauseType entity.PauseType, userIds []uuid.UUID) contract.SubscriptionFilter {
	filter := contract.SubscriptionFilter{
		Statuses: []entity.SubscriptionStatus{entity.SubscriptionStatusActive},
	}
	if pauseType == entity.PauseTypeSelected {
		filter.UserIds = userIds
	}
	return filter
}

func normalize(req Request) Request {
	req.Reason = strings.TrimSpace(req.Reason)
	req.ActorId = strings.TrimSpace(req.ActorId)
	if req.PauseType == entity.PauseTypeAll {
		req.UserIds = nil
	} else {
		req.UserIds = lo.Uniq(req.UserIds)
	}
	return req
}

func validate(req Request) error {
	switch req.PauseType {
	case entity.PauseTypeAll:
	case entity.PauseTypeSelected:
		if len(req.UserIds) == 0 {
			return ierr.NewError("no target users").
				WithHint("user_ids is required when pause_type is selected").
				Mark(ierr.ErrValidation)
		}
		if lo.Contains(req.UserIds, uuid.Nil) {
			return ierr.NewError("nil user id").
				WithHint("user_ids must not contain an empty id").
				Mark(ierr.ErrValidation)
		}
	default:
		return ierr.NewError("invalid pause type").
			WithHintf("pause_type must be all or selected, got %q", req.PauseType).
			Mark(ierr.ErrValidation)
	}

	if req.StartDate.IsZero() {
		return ierr.NewError("missing start date").
			WithHint("start_date is required").
			Mark(ierr.ErrValidation)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return ierr.NewError("end date before start date").
			WithHint("end_date cannot be before start_date").
			Mark(ierr.ErrValidation)
	}
	if req.Reason == "" {
		return ierr.NewError("missing reason").
			WithHint("reason is required").
			Mark(ierr.ErrValidation)
	}
	if req.ActorId == "" {
		return ierr.NewError("missing actor").
			WithHint("actor_id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
