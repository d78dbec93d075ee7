package implementation

import (
	"context"
	"errors"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/mapper"
	"delivery-scheduler-be/internal/model"
	"delivery-scheduler-be/internal/repository/contract"
	"delivery-scheduler-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type schedulePolicyRepository struct {
	db     *gorm.DB
	mapper *mapper.ScheduleMapper
}

// NewSchedulePolicyRepository creates a new schedule policy repository
func NewSchedulePolicyRepository(db *gorm.DB) contract.SchedulePolicyRepository {
	return &schedulePolicyRepository{
		db:     db,
		mapper: mapper.NewScheduleMapper(),
	}
}

// ============================================================================
// Policy Methods
// ============================================================================

func (r *schedulePolicyRepository) FindByCategory(ctx context.Context, category constant.Category) (*entity.SchedulePolicy, error) {
	var m model.SchedulePolicy
	if err := r.db.WithContext(ctx).Where("category = ?", string(category)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PolicyToEntity(&m), nil
}

func (r *schedulePolicyRepository) FindAll(ctx context.Context) ([]*entity.SchedulePolicy, error) {
	var models []model.SchedulePolicy
	if err := r.db.WithContext(ctx).Order("category ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.SchedulePolicy, len(models))
	for i := range models {
		entities[i] = r.mapper.PolicyToEntity(&models[i])
	}
	return entities, nil
}

func (r *schedulePolicyRepository) Save(ctx context.Context, policy *entity.SchedulePolicy) error {
	m := r.mapper.PolicyToModel(policy)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*policy = *r.mapper.PolicyToEntity(m)
	return nil
}

func (r *schedulePolicyRepository) CreateIfMissing(ctx context.Context, policy *entity.SchedulePolicy) (bool, error) {
	m := r.mapper.PolicyToModel(policy)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ============================================================================
// Audit Methods
// ============================================================================

func (r *schedulePolicyRepository) CreateAudit(ctx context.Context, audit *entity.SchedulePolicyAudit) error {
	m := r.mapper.AuditToModel(audit)
	if err := r.db.WithContext(ctx).Omit("Policy").Create(m).Error; err != nil {
		return err
	}
	*audit = *r.mapper.AuditToEntity(m)
	return nil
}

func (r *schedulePolicyRepository) FindAudits(ctx context.Context, category *constant.Category, limit int) ([]*entity.SchedulePolicyAudit, error) {
	var models []model.SchedulePolicyAudit
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	}
	if category != nil {
		specs = append(specs, specification.Filter("category", string(*category)))
	}

	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.SchedulePolicyAudit, len(models))
	for i := range models {
		entities[i] = r.mapper.AuditToEntity(&models[i])
	}
	return entities, nil
}
