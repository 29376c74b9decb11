package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Menu 菜单，属于一个商家
type Menu struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	BusinessID string    `json:"business_id" gorm:"type:char(36);index;not null"`
	Name       string    `json:"name" gorm:"size:32;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Business Business `json:"-" gorm:"foreignKey:BusinessID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (Menu) TableName() string {
	return "menus"
}

// BeforeCreate 生成 UUID 主键
func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MenuQRCode 菜单创建时生成的二维码记录，保存公开访问 URL
type MenuQRCode struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	MenuID    string    `json:"menu_id" gorm:"type:char(36);uniqueIndex;not null"`
	PublicURL string    `json:"public_url" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at"`

	Menu Menu `json:"-" gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (MenuQRCode) TableName() string {
	return "menu_qr_codes"
}

// BeforeCreate 生成 UUID 主键
func (q *MenuQRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
