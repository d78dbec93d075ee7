package implementation

import (
	"context"
	"errors"
	"time"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/mapper"
	"delivery-scheduler-be/internal/model"
	"delivery-scheduler-be/internal/repository/contract"
	"delivery-scheduler-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) filterSpecifications(filter contract.SubscriptionFilter) []specification.Specification {
	var specs []specification.Specification
	if len(filter.Statuses) > 0 {
		specs = append(specs, specification.ByStatuses{Statuses: filter.Statuses})
	}
	if len(filter.UserIds) > 0 {
		specs = append(specs, specification.ByUserIDs{UserIDs: filter.UserIds})
	}
	if len(filter.Categories) > 0 {
		categories := lo.Map(filter.Categories, func(c constant.Category, _ int) string { return string(c) })
		specs = append(specs, specification.FilterIn("category", categories))
	}
	return specs
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.ToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, filter contract.SubscriptionFilter) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	specs := append(r.filterSpecifications(filter), specification.OrderBy{Field: "created_at"})
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *SubscriptionRepositoryImpl) Count(ctx context.Context, filter contract.SubscriptionFilter) (int, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Subscription{}), r.filterSpecifications(filter)...)
	err := query.Count(&count).Error
	return int(count), err
}

func (r *SubscriptionRepositoryImpl) ApplyAdminPause(ctx context.Context, id uuid.UUID, fields entity.AdminPauseFields) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, string(entity.SubscriptionStatusActive)).
		Updates(map[string]interface{}{
			"status":            string(entity.SubscriptionStatusAdminPaused),
			"admin_pause_id":    fields.PauseId,
			"admin_pause_start": fields.PauseStart,
			"admin_pause_end":   fields.PauseEnd,
			"pause_date":        fields.PausedAt,
			"pause_reason":      fields.Reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubscriptionRepositoryImpl) FindForReconciliation(ctx context.Context, lookup specification.AdminPauseReconciliation) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), lookup, specification.OrderBy{Field: "created_at"})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *SubscriptionRepositoryImpl) CountReferencing(ctx context.Context, pauseId uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("admin_pause_id = ?", pauseId).
		Count(&count).Error
	return int(count), err
}

func (r *SubscriptionRepositoryImpl) ReleaseAdminPause(ctx context.Context, id uuid.UUID, pauseId uuid.UUID, nextDelivery time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, string(entity.SubscriptionStatusAdminPaused)).
		Where("admin_pause_id = ? OR admin_pause_id IS NULL", pauseId).
		Updates(map[string]interface{}{
			"status":                string(entity.SubscriptionStatusActive),
			"next_delivery_date":    nextDelivery,
			"admin_pause_id":        nil,
			"admin_pause_start":     nil,
			"admin_pause_end":       nil,
			"pause_date":            nil,
			"pause_reason":          nil,
			"reactivation_deadline": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubscriptionRepositoryImpl) ClearStaleAdminPause(ctx context.Context, id uuid.UUID, pauseId uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND admin_pause_id = ? AND status <> ?", id, pauseId, string(entity.SubscriptionStatusAdminPaused)).
		Updates(map[string]interface{}{
			"admin_pause_id":    nil,
			"admin_pause_start": nil,
			"admin_pause_end":   nil,
			// an active row only carries pause fields written by the admin pause
			"pause_date":   gorm.Expr("CASE WHEN status = ? THEN NULL ELSE pause_date END", string(entity.SubscriptionStatusActive)),
			"pause_reason": gorm.Expr("CASE WHEN status = ? THEN NULL ELSE pause_reason END", string(entity.SubscriptionStatusActive)),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubscriptionRepositoryImpl) toEntities(models []*model.Subscription) []*entity.Subscription {
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities
}
