package model

import (
	"time"

	"github.com/google/uuid"
)

type SchedulePolicy struct {
	Category    string    `gorm:"type:varchar(50);primaryKey"`
	GapDays     int       `gorm:"not null;default:1"`
	IsDaily     bool      `gorm:"not null;default:false"`
	Description string    `gorm:"type:text"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	UpdatedBy   string    `gorm:"type:varchar(255);not null"`
}

func (SchedulePolicy) TableName() string {
	return "schedule_policies"
}

type SchedulePolicyAudit struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Category   string         `gorm:"type:varchar(50);not null;index"`
	Policy     SchedulePolicy `gorm:"foreignKey:Category;references:Category;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	OldGapDays int            `gorm:"not null"`
	NewGapDays int            `gorm:"not null"`
	OldIsDaily bool           `gorm:"not null"`
	NewIsDaily bool           `gorm:"not null"`
	ActorId    string         `gorm:"type:varchar(255);not null"`
	Reason     string         `gorm:"type:text;not null"`
	CreatedAt  time.Time      `gorm:"default:now();not null;index"`
}

func (SchedulePolicyAudit) TableName() string {
	return "schedule_policy_audits"
}
