package implementation

import (
	"context"
	"errors"
	"time"

	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/mapper"
	"delivery-scheduler-be/internal/model"
	"delivery-scheduler-be/internal/repository/contract"
	"delivery-scheduler-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PauseRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PauseRecordMapper
}

func NewPauseRecordRepository(db *gorm.DB) contract.PauseRecordRepository {
	return &PauseRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewPauseRecordMapper(),
	}
}

func (r *PauseRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PauseRecordRepositoryImpl) Create(ctx context.Context, record *entity.AdminPauseRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *PauseRecordRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.AdminPauseRecord, error) {
	var m model.AdminPauseRecord
	if err := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PauseRecordRepositoryImpl) FindAll(ctx context.Context, status *entity.PauseRecordStatus, limit, offset int) ([]*entity.AdminPauseRecord, error) {
	var models []*model.AdminPauseRecord
	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if status != nil {
		specs = append(specs, specification.Filter("status", string(*status)))
	}
	if err := r.applySpecifications(r.db.WithContext(ctx), specs...).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *PauseRecordRepositoryImpl) FindExpired(ctx context.Context, now time.Time) ([]*entity.AdminPauseRecord, error) {
	var models []*model.AdminPauseRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", string(entity.PauseRecordStatusActive), now).
		Order("end_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *PauseRecordRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time, completedBy string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.AdminPauseRecord{}).
		Where("id = ? AND status = ?", id, string(entity.PauseRecordStatusActive)).
		Updates(map[string]interface{}{
			"status":       string(entity.PauseRecordStatusCompleted),
			"completed_at": completedAt,
			"completed_by": completedBy,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PauseRecordRepositoryImpl) toEntities(models []*model.AdminPauseRecord) []*entity.AdminPauseRecord {
	entities := make([]*entity.AdminPauseRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities
}
