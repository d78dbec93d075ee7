package service

import (
	"context"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/dto"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/repository/unitofwork"
	"delivery-scheduler-be/pkg/admin/mapper"
	"delivery-scheduler-be/pkg/delivery"
	"delivery-scheduler-be/pkg/subscription"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ISubscriptionService interface {
	Create(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SubscriptionDetailResponse, error)
	PauseEligibility(ctx context.Context, id uuid.UUID) (*dto.PauseEligibilityResponse, error)
	Pause(ctx context.Context, id uuid.UUID, req dto.PauseSubscriptionRequest) (*dto.SubscriptionResponse, error)
	Resume(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	manager    *subscription.Manager
	calendar   delivery.Calendar
}

func NewSubscriptionService(uowFactory unitofwork.RepositoryFactory, manager *subscription.Manager, calendar delivery.Calendar) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		manager:    manager,
		calendar:   calendar,
	}
}

func (s *subscriptionService) Create(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	start, err := mapper.ParseDate(s.calendar, req.StartDate)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := s.manager.Create(ctx, uow, subscription.CreateInput{
		UserId:         req.UserId,
		Category:       constant.Category(req.Category),
		Cadence:        entity.SubscriptionCadence(req.Cadence),
		StartDate:      start,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.SubscriptionToResponse(s.calendar, sub)), nil
}

func (s *subscriptionService) Get(ctx context.Context, id uuid.UUID) (*dto.SubscriptionDetailResponse, error) {
	detail, err := s.manager.Get(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.SubscriptionDetailToResponse(s.calendar, detail)), nil
}

func (s *subscriptionService) PauseEligibility(ctx context.Context, id uuid.UUID) (*dto.PauseEligibilityResponse, error) {
	eligibility, err := s.manager.Eligibility(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.EligibilityToResponse(s.calendar, eligibility)), nil
}

func (s *subscriptionService) Pause(ctx context.Context, id uuid.UUID, req dto.PauseSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	sub, err := s.manager.Pause(ctx, s.uowFactory.NewUnitOfWork(ctx), id, req.Reason)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.SubscriptionToResponse(s.calendar, sub)), nil
}

func (s *subscriptionService) Resume(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	sub, err := s.manager.Resume(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.SubscriptionToResponse(s.calendar, sub)), nil
}

func (s *subscriptionService) Cancel(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	sub, err := s.manager.Cancel(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.SubscriptionToResponse(s.calendar, sub)), nil
}
