package testutil

import (
	"context"
	"sort"
	"time"

	"delivery-scheduler-be/internal/entity"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type inMemoryPauseRecordRepository struct {
	store *InMemoryStore
}

func (r *inMemoryPauseRecordRepository) Create(ctx context.Context, record *entity.AdminPauseRecord) error {
	if err := r.store.failure(OpPauseCreate, nil); err != nil {
		return err
	}
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.records[record.Id] = cloneRecord(record)
	return nil
}

func (r *inMemoryPauseRecordRepository) FindOne(ctx context.Context, id uuid.UUID) (*entity.AdminPauseRecord, error) {
	if err := r.store.failure(OpPauseFind, &id); err != nil {
		return nil, err
	}
	return r.store.PauseRecord(id), nil
}

func (r *inMemoryPauseRecordRepository) FindAll(ctx context.Context, status *entity.PauseRecordStatus, limit, offset int) ([]*entity.AdminPauseRecord, error) {
	if err := r.store.failure(OpPauseFind, nil); err != nil {
		return nil, err
	}
	records := lo.Filter(r.sorted(), func(rec *entity.AdminPauseRecord, _ int) bool {
		return status == nil || rec.Status == *status
	})
	if offset > 0 {
		if offset >= len(records) {
			return []*entity.AdminPauseRecord{}, nil
		}
		records = records[offset:]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *inMemoryPauseRecordRepository) FindExpired(ctx context.Context, now time.Time) ([]*entity.AdminPauseRecord, error) {
	if err := r.store.failure(OpPauseFind, nil); err != nil {
		return nil, err
	}
	return lo.Filter(r.sorted(), func(rec *entity.AdminPauseRecord, _ int) bool {
		return rec.IsActive() && rec.EndDate != nil && !rec.EndDate.After(now)
	}), nil
}

func (r *inMemoryPauseRecordRepository) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time, completedBy string) (bool, error) {
	if err := r.store.failure(OpPauseComplete, &id); err != nil {
		return false, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.state.records[id]
	if !ok || !rec.IsActive() {
		return false, nil
	}
	rec.Status = entity.PauseRecordStatusCompleted
	rec.CompletedAt = lo.ToPtr(completedAt)
	rec.CompletedBy = lo.ToPtr(completedBy)
	rec.UpdatedAt = time.Now()
	return true, nil
}

// sorted returns copies newest first
func (r *inMemoryPauseRecordRepository) sorted() []*entity.AdminPauseRecord {
	records := r.store.PauseRecords()
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	return records
}
