package service

import (
	"context"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/pkg/delivery"
	"delivery-scheduler-be/pkg/events"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// PolicyInvalidator is the part of the policy cache the consumer drives
type PolicyInvalidator interface {
	Invalidate(category constant.Category)
	InvalidateAll()
}

var _ PolicyInvalidator = (*delivery.PolicyCache)(nil)

type consumerService struct {
	subscriber events.Subscriber
	cache      PolicyInvalidator
	logger     logger.ILogger
}

// NewConsumerService keeps this instance's policy cache in step with updates made on any instance
func NewConsumerService(subscriber events.Subscriber, cache PolicyInvalidator, logger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		cache:      cache,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	return cs.subscriber.Subscribe(ctx, constant.EventSchedulePolicyUpdated, cs.handlePolicyUpdated)
}

func (cs *consumerService) handlePolicyUpdated(ctx context.Context, event events.Event) error {
	raw, _ := event.Payload()["category"].(string)
	category := constant.Category(raw)

	if !category.IsValid() {
		// an event we cannot attribute drops everything rather than risk a stale entry
		cs.cache.InvalidateAll()
		cs.logger.Warn("POLICY_CONSUMER", "Policy update without a known category, cache cleared", map[string]interface{}{
			"category": raw,
		})
		return nil
	}

	cs.cache.Invalidate(category)
	cs.logger.Debug("POLICY_CONSUMER", "Cached policy invalidated", map[string]interface{}{
		"category":    category,
		"occurred_at": event.Timestamp(),
	})
	return nil
}
