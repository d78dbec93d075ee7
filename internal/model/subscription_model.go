package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id                    uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                uuid.UUID  `gorm:"type:uuid;not null;index"`
	Category              string     `gorm:"type:varchar(50);not null;index"`
	Cadence               string     `gorm:"type:varchar(20);not null"`
	Status                string     `gorm:"type:varchar(20);not null;index"`
	NextDeliveryDate      *time.Time
	SubscriptionStartDate time.Time  `gorm:"not null"`
	SubscriptionEndDate   time.Time  `gorm:"not null"`
	PauseDate             *time.Time
	PauseReason           *string    `gorm:"type:text"`
	ReactivationDeadline  *time.Time
	AdminPauseId          *uuid.UUID `gorm:"type:uuid;index"`
	AdminPauseStart       *time.Time
	AdminPauseEnd         *time.Time
	CreatedAt             time.Time  `gorm:"autoCreateTime"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
