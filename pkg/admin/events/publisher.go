package events

import (
	"context"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/pkg/logger"
	pkgEvents "delivery-scheduler-be/pkg/events"
)

// Publisher abstracts event publishing for scheduling and pause operations
type Publisher interface {
	PublishPolicyUpdated(ctx context.Context, policy *entity.SchedulePolicy, audit *entity.SchedulePolicyAudit)
	PublishPauseCreated(ctx context.Context, record *entity.AdminPauseRecord, processed, failed int)
	PublishPauseCompleted(ctx context.Context, record *entity.AdminPauseRecord, reactivated int)
	PublishSubscriptionPaused(ctx context.Context, subscription *entity.Subscription, source string)
	PublishSubscriptionResumed(ctx context.Context, subscription *entity.Subscription, source string)
}

// BusPublisher implements Publisher on top of any event bus (NATS or in-process channel)
type BusPublisher struct {
	bus    pkgEvents.Bus
	logger logger.ILogger
}

// NewBusPublisher creates a new event publisher; a nil bus drops every event
func NewBusPublisher(bus pkgEvents.Bus, logger logger.ILogger) *BusPublisher {
	return &BusPublisher{
		bus:    bus,
		logger: logger,
	}
}

func (p *BusPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.bus == nil {
		return
	}

	evt := pkgEvents.NewEvent(eventType, data, time.Now())
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

// PublishPolicyUpdated emits SCHEDULE_POLICY_UPDATED; other instances drop their cached policy on it
func (p *BusPublisher) PublishPolicyUpdated(ctx context.Context, policy *entity.SchedulePolicy, audit *entity.SchedulePolicyAudit) {
	p.publish(ctx, constant.EventSchedulePolicyUpdated, map[string]interface{}{
		"category":     string(policy.Category),
		"gap_days":     policy.GapDays,
		"is_daily":     policy.IsDaily,
		"old_gap_days": audit.OldGapDays,
		"old_is_daily": audit.OldIsDaily,
		"actor_id":     audit.ActorId,
		"reason":       audit.Reason,
		"entity_type":  "schedule_policy",
		"entity_id":    string(policy.Category),
	})
}

// PublishPauseCreated emits ADMIN_PAUSE_CREATED
func (p *BusPublisher) PublishPauseCreated(ctx context.Context, record *entity.AdminPauseRecord, processed, failed int) {
	p.publish(ctx, constant.EventAdminPauseCreated, map[string]interface{}{
		"pause_record_id":             record.Id.String(),
		"pause_type":                  string(record.PauseType),
		"affected_subscription_count": record.AffectedSubscriptionCount,
		"processed_count":             processed,
		"failed_count":                failed,
		"actor_id":                    record.ActorId,
		"reason":                      record.Reason,
		"entity_type":                 "admin_pause_record",
		"entity_id":                   record.Id.String(),
	})
}

// PublishPauseCompleted emits ADMIN_PAUSE_COMPLETED
func (p *BusPublisher) PublishPauseCompleted(ctx context.Context, record *entity.AdminPauseRecord, reactivated int) {
	completedBy := ""
	if record.CompletedBy != nil {
		completedBy = *record.CompletedBy
	}
	p.publish(ctx, constant.EventAdminPauseCompleted, map[string]interface{}{
		"pause_record_id":   record.Id.String(),
		"reactivated_count": reactivated,
		"completed_by":      completedBy,
		"entity_type":       "admin_pause_record",
		"entity_id":         record.Id.String(),
	})
}

// PublishSubscriptionPaused emits SUBSCRIPTION_PAUSED for a self-service pause
func (p *BusPublisher) PublishSubscriptionPaused(ctx context.Context, subscription *entity.Subscription, source string) {
	p.publish(ctx, constant.EventSubscriptionPaused, subscriptionData(subscription, source))
}

// PublishSubscriptionResumed emits SUBSCRIPTION_RESUMED
func (p *BusPublisher) PublishSubscriptionResumed(ctx context.Context, subscription *entity.Subscription, source string) {
	p.publish(ctx, constant.EventSubscriptionResumed, subscriptionData(subscription, source))
}

func subscriptionData(subscription *entity.Subscription, source string) map[string]interface{} {
	data := map[string]interface{}{
		"subscription_id": subscription.Id.String(),
		"user_id":         subscription.UserId.String(),
		"category":        string(subscription.Category),
		"status":          string(subscription.Status),
		"source":          source,
		"entity_type":     "subscription",
		"entity_id":       subscription.Id.String(),
	}
	if subscription.NextDeliveryDate != nil {
		data["next_delivery_date"] = subscription.NextDeliveryDate.Format("2006-01-02")
	}
	return data
}
