package service

import (
	"context"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/dto"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"
	"delivery-scheduler-be/internal/repository/unitofwork"
	"delivery-scheduler-be/pkg/admin/mapper"
	"delivery-scheduler-be/pkg/admin/pause"
	"delivery-scheduler-be/pkg/admin/reactivation"
	"delivery-scheduler-be/pkg/admin/schedule"
	"delivery-scheduler-be/pkg/delivery"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IAdminService interface {
	// Schedule Policy Management
	ListPolicies(ctx context.Context) ([]dto.SchedulePolicyResponse, error)
	GetPolicy(ctx context.Context, category string) (*dto.SchedulePolicyResponse, error)
	UpdatePolicy(ctx context.Context, category string, req dto.UpdateSchedulePolicyRequest) (*dto.UpdateSchedulePolicyResponse, error)
	ListPolicyAudit(ctx context.Context, req dto.SchedulePolicyAuditRequest) ([]dto.SchedulePolicyAuditResponse, error)
	PreviewSchedule(ctx context.Context, req dto.SchedulePreviewRequest) (*dto.SchedulePreviewResponse, error)

	// Administrative Pause
	CreatePause(ctx context.Context, req dto.CreatePauseRequest) (*dto.PauseResponse, error)
	RetryPause(ctx context.Context, pauseRecordId uuid.UUID) (*dto.PauseResponse, error)
	ListPauseRecords(ctx context.Context, req dto.PauseRecordListRequest) ([]dto.PauseRecordResponse, error)
	GetPauseRecord(ctx context.Context, pauseRecordId uuid.UUID) (*dto.PauseRecordDetailResponse, error)

	// Reactivation
	Reactivate(ctx context.Context, req dto.ReactivateRequest) (*dto.ReactivateResponse, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	calendar   delivery.Calendar

	// Domain Components
	scheduleManager *schedule.Manager
	pauser          *pause.Orchestrator
	reactivator     *reactivation.Orchestrator
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	calendar delivery.Calendar,
	scheduleManager *schedule.Manager,
	pauser *pause.Orchestrator,
	reactivator *reactivation.Orchestrator,
) IAdminService {
	return &adminService{
		uowFactory:      uowFactory,
		logger:          logger,
		calendar:        calendar,
		scheduleManager: scheduleManager,
		pauser:          pauser,
		reactivator:     reactivator,
	}
}

// --- Schedule Policy Management ---

func (s *adminService) ListPolicies(ctx context.Context) ([]dto.SchedulePolicyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	policies, err := s.scheduleManager.List(ctx, uow)
	if err != nil {
		return nil, err
	}
	return mapper.PoliciesToResponse(policies), nil
}

func (s *adminService) GetPolicy(ctx context.Context, category string) (*dto.SchedulePolicyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	policy, err := s.scheduleManager.Get(ctx, uow, constant.Category(category))
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.PolicyToResponse(policy)), nil
}

func (s *adminService) UpdatePolicy(ctx context.Context, category string, req dto.UpdateSchedulePolicyRequest) (*dto.UpdateSchedulePolicyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	res, err := s.scheduleManager.Update(ctx, uow, constant.Category(category), schedule.UpdateInput{
		GapDays:     req.GapDays,
		IsDaily:     req.IsDaily,
		Description: req.Description,
		Reason:      req.Reason,
		ActorId:     req.ActorId,
	})
	if err != nil {
		return nil, err
	}
	return &dto.UpdateSchedulePolicyResponse{
		Policy:           mapper.PolicyToResponse(res.Policy),
		AuditId:          res.Audit.Id.String(),
		CacheInvalidated: res.CacheInvalidated,
	}, nil
}

func (s *adminService) ListPolicyAudit(ctx context.Context, req dto.SchedulePolicyAuditRequest) ([]dto.SchedulePolicyAuditResponse, error) {
	var category *constant.Category
	if req.Category != "" {
		category = lo.ToPtr(constant.Category(req.Category))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	audits, err := s.scheduleManager.ListAudit(ctx, uow, category, req.Limit)
	if err != nil {
		return nil, err
	}
	return mapper.AuditsToResponse(audits), nil
}

func (s *adminService) PreviewSchedule(ctx context.Context, req dto.SchedulePreviewRequest) (*dto.SchedulePreviewResponse, error) {
	start, err := mapper.ParseDate(s.calendar, req.StartDate)
	if err != nil {
		return nil, err
	}

	var override *schedule.PreviewOverride
	if req.GapDays != nil || req.IsDaily != nil {
		override = &schedule.PreviewOverride{GapDays: req.GapDays, IsDaily: req.IsDaily}
	}

	res, err := s.scheduleManager.Preview(ctx, constant.Category(req.Category), start, req.PreviewMonths, override)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.PreviewToResponse(s.calendar, res.Policy, res.Dates)), nil
}

// --- Administrative Pause ---

func (s *adminService) CreatePause(ctx context.Context, req dto.CreatePauseRequest) (*dto.PauseResponse, error) {
	start, err := mapper.ParseDate(s.calendar, req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := mapper.ParseDate(s.calendar, *req.EndDate)
		if err != nil {
			return nil, err
		}
		end = &parsed
	}

	res, err := s.pauser.Pause(ctx, pause.Request{
		PauseType: entity.PauseType(req.PauseType),
		UserIds:   req.UserIds,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		ActorId:   req.ActorId,
	})
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.PauseResultToResponse(res)), nil
}

func (s *adminService) RetryPause(ctx context.Context, pauseRecordId uuid.UUID) (*dto.PauseResponse, error) {
	res, err := s.pauser.RetryPause(ctx, pauseRecordId)
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.PauseResultToResponse(res)), nil
}

func (s *adminService) ListPauseRecords(ctx context.Context, req dto.PauseRecordListRequest) ([]dto.PauseRecordResponse, error) {
	var status *entity.PauseRecordStatus
	if req.Status != "" {
		status = lo.ToPtr(entity.PauseRecordStatus(req.Status))
	}
	page := lo.Ternary(req.Page > 0, req.Page, 1)
	limit := lo.Ternary(req.Limit > 0, req.Limit, 20)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.PauseRecordRepository().FindAll(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list pause records").
			Mark(ierr.ErrDatabase)
	}
	return mapper.PauseRecordsToResponse(s.calendar, records), nil
}

func (s *adminService) GetPauseRecord(ctx context.Context, pauseRecordId uuid.UUID) (*dto.PauseRecordDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
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

	held, err := uow.SubscriptionRepository().CountReferencing(ctx, record.Id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to count subscriptions held by the pause").
			Mark(ierr.ErrDatabase)
	}
	return &dto.PauseRecordDetailResponse{
		PauseRecordResponse:   mapper.PauseRecordToResponse(s.calendar, record),
		HeldSubscriptionCount: held,
	}, nil
}

// --- Reactivation ---

// Reactivate releases one pause record, or every active record when none is named
func (s *adminService) Reactivate(ctx context.Context, req dto.ReactivateRequest) (*dto.ReactivateResponse, error) {
	if req.PauseRecordId == nil {
		if reactivation.Scope(req.Scope) != reactivation.ScopeAll {
			return nil, ierr.NewError("missing pause record").
				WithHint("pause_record_id is required when scope is selected").
				Mark(ierr.ErrValidation)
		}
		batch, err := s.reactivator.ReactivateAllActive(ctx, req.ActorId)
		if err != nil {
			return nil, err
		}
		return lo.ToPtr(mapper.ReactivationToResponse(batch.Results, batch.Failed)), nil
	}

	res, err := s.reactivator.Reactivate(ctx, reactivation.Request{
		PauseRecordId:   *req.PauseRecordId,
		Scope:           reactivation.Scope(req.Scope),
		SubscriptionIds: req.SubscriptionIds,
		ActorId:         req.ActorId,
	})
	if err != nil {
		return nil, err
	}
	return lo.ToPtr(mapper.ReactivationToResponse([]*reactivation.Result{res}, nil)), nil
}
