package schedule

import (
	"context"
	"strings"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/repository/unitofwork"
	adminEvents "delivery-scheduler-be/pkg/admin/events"
	"delivery-scheduler-be/pkg/delivery"

	"github.com/google/uuid"
)

// UpdateInput carries an administrative policy change
type UpdateInput struct {
	GapDays     int
	IsDaily     bool
	Description string
	Reason      string
	ActorId     string
}

// UpdateResult is the stored policy together with the audit entry written with it
type UpdateResult struct {
	Policy           *entity.SchedulePolicy
	Audit            *entity.SchedulePolicyAudit
	CacheInvalidated bool
}

// PreviewOverride previews a policy change before it is applied
type PreviewOverride struct {
	GapDays *int
	IsDaily *bool
}

// PreviewResult lists delivery dates computed under the effective policy
type PreviewResult struct {
	Policy entity.SchedulePolicy
	Dates  []time.Time
}

// Manager owns the schedule policy store operations
type Manager struct {
	logger    logger.ILogger
	cache     *delivery.PolicyCache
	calendar  delivery.Calendar
	publisher adminEvents.Publisher
	now       func() time.Time
}

func NewManager(
	logger logger.ILogger,
	cache *delivery.PolicyCache,
	calendar delivery.Calendar,
	publisher adminEvents.Publisher,
	now func() time.Time,
) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		logger:    logger,
		cache:     cache,
		calendar:  calendar,
		publisher: publisher,
		now:       now,
	}
}

func requireCategory(category constant.Category) error {
	if category.IsValid() {
		return nil
	}
	return ierr.NewError("unknown category").
		WithHintf("Category %q does not exist", category).
		Mark(ierr.ErrNotFound)
}

// Get reads the stored policy of a category
func (m *Manager) Get(ctx context.Context, uow unitofwork.UnitOfWork, category constant.Category) (*entity.SchedulePolicy, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}

	policy, err := uow.SchedulePolicyRepository().FindByCategory(ctx, category)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load schedule policy").
			Mark(ierr.ErrDatabase)
	}
	if policy == nil {
		return nil, ierr.NewError("schedule policy not found").
			WithHintf("No schedule policy is stored for category %s", category).
			Mark(ierr.ErrNotFound)
	}
	return policy, nil
}

// List returns every stored policy ordered by category
func (m *Manager) List(ctx context.Context, uow unitofwork.UnitOfWork) ([]*entity.SchedulePolicy, error) {
	policies, err := uow.SchedulePolicyRepository().FindAll(ctx)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list schedule policies").
			Mark(ierr.ErrDatabase)
	}
	return policies, nil
}

// Update writes the new policy and its audit entry in one transaction,
// then drops the cached policy and announces the change
func (m *Manager) Update(ctx context.Context, uow unitofwork.UnitOfWork, category constant.Category, input UpdateInput) (*UpdateResult, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}
	input.Reason = strings.TrimSpace(input.Reason)
	input.ActorId = strings.TrimSpace(input.ActorId)
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}
	defer uow.Rollback()

	repo := uow.SchedulePolicyRepository()
	current, err := repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load schedule policy").
			Mark(ierr.ErrDatabase)
	}
	if current == nil {
		return nil, ierr.NewError("schedule policy not found").
			WithHintf("No schedule policy is stored for category %s", category).
			Mark(ierr.ErrNotFound)
	}

	now := m.now()
	updated := &entity.SchedulePolicy{
		Category:    category,
		GapDays:     input.GapDays,
		IsDaily:     input.IsDaily,
		Description: current.Description,
		UpdatedAt:   now,
		UpdatedBy:   input.ActorId,
	}
	// a daily policy steps one day regardless of the gap
	if input.IsDaily {
		updated.GapDays = 1
	}
	if d := strings.TrimSpace(input.Description); d != "" {
		updated.Description = d
	}

	if err := repo.Save(ctx, updated); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to save schedule policy").
			Mark(ierr.ErrDatabase)
	}

	audit := &entity.SchedulePolicyAudit{
		Id:         uuid.New(),
		Category:   category,
		OldGapDays: current.GapDays,
		NewGapDays: updated.GapDays,
		OldIsDaily: current.IsDaily,
		NewIsDaily: updated.IsDaily,
		ActorId:    input.ActorId,
		Reason:     input.Reason,
		CreatedAt:  now,
	}
	if err := repo.CreateAudit(ctx, audit); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to append policy audit entry").
			Mark(ierr.ErrDatabase)
	}

	if err := uow.Commit(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to commit policy change").
			Mark(ierr.ErrDatabase)
	}

	m.cache.Invalidate(category)
	m.publisher.PublishPolicyUpdated(ctx, updated, audit)

	m.logger.Info("SCHEDULE_POLICY", "Policy updated", map[string]interface{}{
		"category":     category,
		"old_gap_days": audit.OldGapDays,
		"new_gap_days": audit.NewGapDays,
		"old_is_daily": audit.OldIsDaily,
		"new_is_daily": audit.NewIsDaily,
		"actor_id":     input.ActorId,
	})

	return &UpdateResult{Policy: updated, Audit: audit, CacheInvalidated: true}, nil
}

// ListAudit returns policy changes newest first
func (m *Manager) ListAudit(ctx context.Context, uow unitofwork.UnitOfWork, category *constant.Category, limit int) ([]*entity.SchedulePolicyAudit, error) {
	if category != nil {
		if err := requireCategory(*category); err != nil {
			return nil, err
		}
	}
	switch {
	case limit <= 0:
		limit = constant.DefaultAuditLimit
	case limit > constant.MaxAuditLimit:
		limit = constant.MaxAuditLimit
	}

	audits, err := uow.SchedulePolicyRepository().FindAudits(ctx, category, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list policy audit entries").
			Mark(ierr.ErrDatabase)
	}
	return audits, nil
}

// Preview computes delivery dates without persisting anything. The override, when set,
// replaces the resolved policy so operators can check a change before applying it.
func (m *Manager) Preview(ctx context.Context, category constant.Category, start time.Time, months int, override *PreviewOverride) (*PreviewResult, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}
	if months < 0 || months > constant.MaxPreviewMonths {
		return nil, ierr.NewError("invalid preview window").
			WithHintf("preview_months must be between 0 and %d", constant.MaxPreviewMonths).
			Mark(ierr.ErrValidation)
	}

	policy, err := m.cache.Resolve(ctx, category)
	if err != nil {
		return nil, err
	}

	if override != nil {
		if override.IsDaily != nil {
			policy.IsDaily = *override.IsDaily
		}
		if override.GapDays != nil {
			policy.GapDays = *override.GapDays
		}
		if !policy.IsDaily {
			if err := validateGap(policy.GapDays); err != nil {
				return nil, err
			}
		}
	}

	dates, err := m.calendar.GenerateDeliveryDates(start, months, policy)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Policy: policy, Dates: dates}, nil
}

func validateGap(gapDays int) error {
	if gapDays < constant.MinGapDays || gapDays > constant.MaxGapDays {
		return ierr.NewError("gap days out of range").
			WithHintf("gap_days must be between %d and %d", constant.MinGapDays, constant.MaxGapDays).
			WithReportableDetails(map[string]any{"gap_days": gapDays}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func validateUpdate(input UpdateInput) error {
	if !input.IsDaily {
		if err := validateGap(input.GapDays); err != nil {
			return err
		}
	}
	if input.Reason == "" {
		return ierr.NewError("missing reason").
			WithHint("reason is required").
			Mark(ierr.ErrValidation)
	}
	if input.ActorId == "" {
		return ierr.NewError("missing actor").
			WithHint("actor_id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
