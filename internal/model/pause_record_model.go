package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AdminPauseRecord struct {
	Id                        uuid.UUID                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PauseType                 string                         `gorm:"type:varchar(20);not null"`
	AffectedUserIds           datatypes.JSONSlice[uuid.UUID] `gorm:"type:jsonb"`
	StartDate                 time.Time                      `gorm:"not null"`
	EndDate                   *time.Time
	Reason                    string     `gorm:"type:text;not null"`
	ActorId                   string     `gorm:"type:varchar(255);not null"`
	Status                    string     `gorm:"type:varchar(20);not null;index"`
	AffectedSubscriptionCount int        `gorm:"not null;default:0"`
	CompletedAt               *time.Time
	CompletedBy               *string   `gorm:"type:varchar(255)"`
	CreatedAt                 time.Time `gorm:"autoCreateTime"`
	UpdatedAt                 time.Time `gorm:"autoUpdateTime"`
}

func (AdminPauseRecord) TableName() string {
	return "admin_pause_records"
}
