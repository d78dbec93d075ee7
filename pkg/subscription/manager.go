package subscription

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
	"github.com/samber/lo"
)

const (
	// UpcomingPreviewSize is how many future deliveries a subscription read shows
	UpcomingPreviewSize = 5

	sourceSelfService = "self_service"
)

type CreateInput struct {
	UserId         uuid.UUID
	Category       constant.Category
	Cadence        entity.SubscriptionCadence
	StartDate      time.Time
	DurationMonths int
}

// Detail is a subscription with its next few computed deliveries
type Detail struct {
	Subscription *entity.Subscription
	Upcoming     []time.Time
}

// Manager handles the subscriber-facing lifecycle: create, read, self pause, resume, cancel
type Manager struct {
	logger    logger.ILogger
	policies  delivery.PolicyResolver
	calendar  delivery.Calendar
	publisher adminEvents.Publisher
	now       func() time.Time
}

func NewManager(
	logger logger.ILogger,
	policies delivery.PolicyResolver,
	calendar delivery.Calendar,
	publisher adminEvents.Publisher,
	now func() time.Time,
) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		logger:    logger,
		policies:  policies,
		calendar:  calendar,
		publisher: publisher,
		now:       now,
	}
}

// Create stores a new active subscription with its first delivery computed from the policy
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, input CreateInput) (*entity.Subscription, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	policy, err := m.policies.Resolve(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	start := m.calendar.Day(input.StartDate)
	next, err := m.calendar.UpcomingDeliveryDate(start, m.now(), policy)
	if err != nil {
		return nil, err
	}

	sub := &entity.Subscription{
		Id:                    uuid.New(),
		UserId:                input.UserId,
		Category:              input.Category,
		Cadence:               input.Cadence,
		Status:                entity.SubscriptionStatusActive,
		NextDeliveryDate:      &next,
		SubscriptionStartDate: start,
		SubscriptionEndDate:   start.AddDate(0, input.DurationMonths, 0),
	}
	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}

	m.logger.Info("SUBSCRIPTION", "Subscription created", map[string]interface{}{
		"subscription_id": sub.Id,
		"user_id":         sub.UserId,
		"category":        sub.Category,
	})
	return sub, nil
}

// Get reads a subscription together with its upcoming deliveries
func (m *Manager) Get(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*Detail, error) {
	sub, err := m.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Subscription: sub, Upcoming: []time.Time{}}
	if sub.Status != entity.SubscriptionStatusActive {
		return detail, nil
	}

	policy, err := m.policies.Resolve(ctx, sub.Category)
	if err != nil {
		return nil, err
	}

	// walk forward from the stored next delivery, bounded by the subscription end
	cursor := m.calendar.Day(m.now())
	if sub.NextDeliveryDate != nil && sub.NextDeliveryDate.After(cursor) {
		cursor = m.calendar.Day(*sub.NextDeliveryDate)
	}
	date, err := m.calendar.UpcomingDeliveryDate(sub.SubscriptionStartDate, cursor, policy)
	if err != nil {
		return nil, err
	}
	for len(detail.Upcoming) < UpcomingPreviewSize && date.Before(sub.SubscriptionEndDate) {
		detail.Upcoming = append(detail.Upcoming, date)
		if date, err = m.calendar.UpcomingDeliveryDate(sub.SubscriptionStartDate, date.AddDate(0, 0, 1), policy); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// Eligibility reports whether a self-service pause would be accepted now
func (m *Manager) Eligibility(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*delivery.PauseEligibility, error) {
	sub, err := m.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if err := delivery.RequireTransition(sub.Status, entity.SubscriptionStatusPaused); err != nil {
		return nil, err
	}
	return m.evaluate(ctx, sub)
}

// Pause applies a self-service pause when the cutoff rule allows it
func (m *Manager) Pause(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, reason string) (*entity.Subscription, error) {
	sub, err := m.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if err := delivery.RequireTransition(sub.Status, entity.SubscriptionStatusPaused); err != nil {
		return nil, err
	}

	eligibility, err := m.evaluate(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, ierr.NewError("pause not allowed").
			WithHint(ineligibleHint(eligibility.Reason)).
			WithReportableDetails(map[string]any{
				"reason":             eligibility.Reason,
				"next_delivery_date": eligibility.NextDeliveryDate.Format(time.DateOnly),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := m.now()
	sub.Status = entity.SubscriptionStatusPaused
	sub.PauseDate = &now
	sub.ReactivationDeadline = eligibility.ReactivationDeadline
	if r := strings.TrimSpace(reason); r != "" {
		sub.PauseReason = &r
	}

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to pause subscription").
			Mark(ierr.ErrDatabase)
	}

	m.publisher.PublishSubscriptionPaused(ctx, sub, sourceSelfService)
	return sub, nil
}

// Resume ends a self-service pause; administrative pauses are released only by reactivation
func (m *Manager) Resume(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Subscription, error) {
	sub, err := m.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == entity.SubscriptionStatusAdminPaused {
		return nil, ierr.NewError("subscription held by administrative pause").
			WithHint("This subscription is paused by an administrator and cannot be resumed here").
			Mark(ierr.ErrInvalidOperation)
	}
	if err := delivery.RequireTransition(sub.Status, entity.SubscriptionStatusActive); err != nil {
		return nil, err
	}

	policy, err := m.policies.Resolve(ctx, sub.Category)
	if err != nil {
		return nil, err
	}
	next, err := m.calendar.NextDeliveryDate(m.now(), policy)
	if err != nil {
		return nil, err
	}

	sub.Status = entity.SubscriptionStatusActive
	sub.NextDeliveryDate = &next
	sub.ClearPause()

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to resume subscription").
			Mark(ierr.ErrDatabase)
	}

	m.publisher.PublishSubscriptionResumed(ctx, sub, sourceSelfService)
	return sub, nil
}

// Cancel moves an active subscription to its terminal state
func (m *Manager) Cancel(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Subscription, error) {
	sub, err := m.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if err := delivery.RequireTransition(sub.Status, entity.SubscriptionStatusCancelled); err != nil {
		return nil, err
	}

	sub.Status = entity.SubscriptionStatusCancelled
	sub.NextDeliveryDate = nil
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to cancel subscription").
			Mark(ierr.ErrDatabase)
	}

	m.logger.Info("SUBSCRIPTION", "Subscription cancelled", map[string]interface{}{"subscription_id": sub.Id})
	return sub, nil
}

func (m *Manager) find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Subscription, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load subscription").
			Mark(ierr.ErrDatabase)
	}
	if sub == nil {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

// evaluate passes the stored next delivery unmodified; a missing one is derived from the start anchor
func (m *Manager) evaluate(ctx context.Context, sub *entity.Subscription) (*delivery.PauseEligibility, error) {
	now := m.now()
	next := sub.NextDeliveryDate
	if next == nil {
		policy, err := m.policies.Resolve(ctx, sub.Category)
		if err != nil {
			return nil, err
		}
		upcoming, err := m.calendar.UpcomingDeliveryDate(sub.SubscriptionStartDate, now, policy)
		if err != nil {
			return nil, err
		}
		next = lo.ToPtr(upcoming)
	}

	result := m.calendar.EvaluatePauseEligibility(*next, now)
	return &result, nil
}

func ineligibleHint(reason delivery.EligibilityReason) string {
	switch reason {
	case delivery.EligibilityDeliveryCommitted:
		return "The next delivery is already committed and cannot be paused"
	case delivery.EligibilityPastCutoff:
		return "Tomorrow's delivery can no longer be paused after the daily cutoff"
	default:
		return "The subscription cannot be paused right now"
	}
}

func validateCreate(input CreateInput) error {
	if input.UserId == uuid.Nil {
		return ierr.NewError("missing user").
			WithHint("user_id is required").
			Mark(ierr.ErrValidation)
	}
	if !input.Category.IsValid() {
		return ierr.NewError("unknown category").
			WithHintf("Category %q does not exist", input.Category).
			Mark(ierr.ErrValidation)
	}
	if input.Cadence != entity.SubscriptionCadenceWeekly && input.Cadence != entity.SubscriptionCadenceMonthly {
		return ierr.NewError("invalid cadence").
			WithHint("cadence must be weekly or monthly").
			Mark(ierr.ErrValidation)
	}
	if input.StartDate.IsZero() {
		return ierr.NewError("missing start date").
			WithHint("start_date is required").
			Mark(ierr.ErrValidation)
	}
	if input.DurationMonths <= 0 {
		return ierr.NewError("invalid duration").
			WithHint("duration_months must be positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}
