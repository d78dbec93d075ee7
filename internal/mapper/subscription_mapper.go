package mapper

import (
	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		Category:              constant.Category(s.Category),
		Cadence:               entity.SubscriptionCadence(s.Cadence),
		Status:                entity.SubscriptionStatus(s.Status),
		NextDeliveryDate:      s.NextDeliveryDate,
		SubscriptionStartDate: s.SubscriptionStartDate,
		SubscriptionEndDate:   s.SubscriptionEndDate,
		PauseDate:             s.PauseDate,
		PauseReason:           s.PauseReason,
		ReactivationDeadline:  s.ReactivationDeadline,
		AdminPauseId:          s.AdminPauseId,
		AdminPauseStart:       s.AdminPauseStart,
		AdminPauseEnd:         s.AdminPauseEnd,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		Category:              string(s.Category),
		Cadence:               string(s.Cadence),
		Status:                string(s.Status),
		NextDeliveryDate:      s.NextDeliveryDate,
		SubscriptionStartDate: s.SubscriptionStartDate,
		SubscriptionEndDate:   s.SubscriptionEndDate,
		PauseDate:             s.PauseDate,
		PauseReason:           s.PauseReason,
		ReactivationDeadline:  s.ReactivationDeadline,
		AdminPauseId:          s.AdminPauseId,
		AdminPauseStart:       s.AdminPauseStart,
		AdminPauseEnd:         s.AdminPauseEnd,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}
