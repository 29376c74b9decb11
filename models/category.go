package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuCategory 菜单分类（与菜单的从属关系通过排序索引表建立）
type MenuCategory struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 设置表名
func (MenuCategory) TableName() string {
	return "menu_categories"
}

// BeforeCreate 生成 UUID 主键
func (c *MenuCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// MenuCategorySortIndex 分类排序索引：每个分类在所属菜单内有且仅有一行
// order_index 只保证相对顺序，不要求连续
type MenuCategorySortIndex struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	MenuID     string    `json:"menu_id" gorm:"type:char(36);index;not null;uniqueIndex:uniq_menu_category,priority:1"`
	CategoryID string    `json:"category_id" gorm:"type:char(36);uniqueIndex;uniqueIndex:uniq_menu_category,priority:2;not null"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Menu     Menu         `json:"-" gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE"`
	Category MenuCategory `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (MenuCategorySortIndex) TableName() string {
	return "menu_category_sort_indexes"
}

// BeforeCreate 生成 UUID 主键
func (s *MenuCategorySortIndex) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
