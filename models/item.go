package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuCategoryItem 菜品，属于一个分类
type MenuCategoryItem struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	CategoryID  string    `json:"category_id" gorm:"type:char(36);index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description" gorm:"size:255"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category MenuCategory `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (MenuCategoryItem) TableName() string {
	return "menu_category_items"
}

// BeforeCreate 生成 UUID 主键
func (i *MenuCategoryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// MenuCategoryItemSortIndex 菜品排序索引：每个菜品在所属分类内有且仅有一行
type MenuCategoryItemSortIndex struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	CategoryID string    `json:"category_id" gorm:"type:char(36);index;not null"`
	ItemID     string    `json:"item_id" gorm:"type:char(36);uniqueIndex;not null"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Category MenuCategory     `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Item     MenuCategoryItem `json:"item" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// TableName 设置表名
func (MenuCategoryItemSortIndex) TableName() string {
	return "menu_category_item_sort_indexes"
}

// BeforeCreate 生成 UUID 主键
func (s *MenuCategoryItemSortIndex) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
