package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 订阅状态，与 Stripe 下发的 status 保持一致
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription 商家订阅，决定公开菜单是否可见
type Subscription struct {
	ID                   string    `json:"id" gorm:"type:char(36);primaryKey"`
	BusinessID           string    `json:"business_id" gorm:"type:char(36);uniqueIndex;not null"`
	StripeCustomerID     string    `json:"-" gorm:"size:64;index"`
	StripeSubscriptionID string    `json:"-" gorm:"size:64;index"`
	Status               string    `json:"status" gorm:"size:20;not null"`
	CurrentPeriodEnd     time.Time `json:"current_period_end" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Business Business `json:"-" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Subscription) TableName() string {
	return "subscriptions"
}

// BeforeCreate 生成 UUID 主键
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsActive 订阅是否有效：状态为 active 且当前时间早于计费周期截止时间
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive && time.Now().Before(s.CurrentPeriodEnd)
}
