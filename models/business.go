package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business 商家，与账号一对一绑定
type Business struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate 生成 UUID 主键
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
