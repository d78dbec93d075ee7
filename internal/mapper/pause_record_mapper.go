package mapper

import (
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/model"

	"github.com/google/uuid"
)

type PauseRecordMapper struct{}

func NewPauseRecordMapper() *PauseRecordMapper {
	return &PauseRecordMapper{}
}

func (m *PauseRecordMapper) ToEntity(r *model.AdminPauseRecord) *entity.AdminPauseRecord {
	if r == nil {
		return nil
	}
	userIds := make([]uuid.UUID, len(r.AffectedUserIds))
	copy(userIds, r.AffectedUserIds)
	return &entity.AdminPauseRecord{
		Id:                        r.Id,
		PauseType:                 entity.PauseType(r.PauseType),
		AffectedUserIds:           userIds,
		StartDate:                 r.StartDate,
		EndDate:                   r.EndDate,
		Reason:                    r.Reason,
		ActorId:                   r.ActorId,
		Status:                    entity.PauseRecordStatus(r.Status),
		AffectedSubscriptionCount: r.AffectedSubscriptionCount,
		CompletedAt:               r.CompletedAt,
		CompletedBy:               r.CompletedBy,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}

func (m *PauseRecordMapper) ToModel(r *entity.AdminPauseRecord) *model.AdminPauseRecord {
	if r == nil {
		return nil
	}
	userIds := make([]uuid.UUID, len(r.AffectedUserIds))
	copy(userIds, r.AffectedUserIds)
	return &model.AdminPauseRecord{
		Id:                        r.Id,
		PauseType:                 string(r.PauseType),
		AffectedUserIds:           userIds,
		StartDate:                 r.StartDate,
		EndDate:                   r.EndDate,
		Reason:                    r.Reason,
		ActorId:                   r.ActorId,
		Status:                    string(r.Status),
		AffectedSubscriptionCount: r.AffectedSubscriptionCount,
		CompletedAt:               r.CompletedAt,
		CompletedBy:               r.CompletedBy,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}
