package entity

import (
	"time"

	"github.com/google/uuid"
)

type PauseType string
type PauseRecordStatus string

const (
	PauseTypeAll      PauseType = "all"
	PauseTypeSelected PauseType = "selected"

	PauseRecordStatusActive    PauseRecordStatus = "active"
	PauseRecordStatusCompleted PauseRecordStatus = "completed"
)

// AdminPauseRecord is the durable record of one administrative suspension action
type AdminPauseRecord struct {
	Id                        uuid.UUID
	PauseType                 PauseType
	AffectedUserIds           []uuid.UUID
	StartDate                 time.Time
	EndDate                   *time.Time
	Reason                    string
	ActorId                   string
	Status                    PauseRecordStatus
	AffectedSubscriptionCount int
	CompletedAt               *time.Time
	CompletedBy               *string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (r *AdminPauseRecord) IsActive() bool {
	return r.Status == PauseRecordStatusActive
}
