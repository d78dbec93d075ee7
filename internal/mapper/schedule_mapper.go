package mapper

import (
	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/model"
)

type ScheduleMapper struct{}

func NewScheduleMapper() *ScheduleMapper {
	return &ScheduleMapper{}
}

func (m *ScheduleMapper) PolicyToEntity(p *model.SchedulePolicy) *entity.SchedulePolicy {
	if p == nil {
		return nil
	}
	return &entity.SchedulePolicy{
		Category:    constant.Category(p.Category),
		GapDays:     p.GapDays,
		IsDaily:     p.IsDaily,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
		UpdatedBy:   p.UpdatedBy,
	}
}

func (m *ScheduleMapper) PolicyToModel(p *entity.SchedulePolicy) *model.SchedulePolicy {
	if p == nil {
		return nil
	}
	return &model.SchedulePolicy{
		Category:    string(p.Category),
		GapDays:     p.GapDays,
		IsDaily:     p.IsDaily,
		Description: p.Description,
		UpdatedAt:   p.UpdatedAt,
		UpdatedBy:   p.UpdatedBy,
	}
}

func (m *ScheduleMapper) AuditToEntity(a *model.SchedulePolicyAudit) *entity.SchedulePolicyAudit {
	if a == nil {
		return nil
	}
	return &entity.SchedulePolicyAudit{
		Id:         a.Id,
		Category:   constant.Category(a.Category),
		OldGapDays: a.OldGapDays,
		NewGapDays: a.NewGapDays,
		OldIsDaily: a.OldIsDaily,
		NewIsDaily: a.NewIsDaily,
		ActorId:    a.ActorId,
		Reason:     a.Reason,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *ScheduleMapper) AuditToModel(a *entity.SchedulePolicyAudit) *model.SchedulePolicyAudit {
	if a == nil {
		return nil
	}
	return &model.SchedulePolicyAudit{
		Id:         a.Id,
		Category:   string(a.Category),
		OldGapDays: a.OldGapDays,
		NewGapDays: a.NewGapDays,
		OldIsDaily: a.OldIsDaily,
		NewIsDaily: a.NewIsDaily,
		ActorId:    a.ActorId,
		Reason:     a.Reason,
		CreatedAt:  a.CreatedAt,
	}
}
