package testutil

import (
	"context"
	"sync"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
)

// PublishedEvent is one event captured by InMemoryPublisher
type PublishedEvent struct {
	Type     string
	EntityID string
	Count    int
}

// InMemoryPublisher records every published admin event
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) record(evt PublishedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *InMemoryPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

// OfType returns the captured events of one type
func (p *InMemoryPublisher) OfType(eventType string) []PublishedEvent {
	var out []PublishedEvent
	for _, evt := range p.Events() {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

func (p *InMemoryPublisher) PublishPolicyUpdated(ctx context.Context, policy *entity.SchedulePolicy, audit *entity.SchedulePolicyAudit) {
	p.record(PublishedEvent{Type: constant.EventSchedulePolicyUpdated, EntityID: string(policy.Category)})
}

func (p *InMemoryPublisher) PublishPauseCreated(ctx context.Context, record *entity.AdminPauseRecord, processed, failed int) {
	p.record(PublishedEvent{Type: constant.EventAdminPauseCreated, EntityID: record.Id.String(), Count: processed})
}

func (p *InMemoryPublisher) PublishPauseCompleted(ctx context.Context, record *entity.AdminPauseRecord, reactivated int) {
	p.record(PublishedEvent{Type: constant.EventAdminPauseCompleted, EntityID: record.Id.String(), Count: reactivated})
}

func (p *InMemoryPublisher) PublishSubscriptionPaused(ctx context.Context, subscription *entity.Subscription, source string) {
	p.record(PublishedEvent{Type: constant.EventSubscriptionPaused, EntityID: subscription.Id.String()})
}

func (p *InMemoryPublisher) PublishSubscriptionResumed(ctx context.Context, subscription *entity.Subscription, source string) {
	p.record(PublishedEvent{Type: constant.EventSubscriptionResumed, EntityID: subscription.Id.String()})
}
