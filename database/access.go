package database

import (
	"errors"

	"menunook/models"

	"gorm.io/gorm"
)

// Access 数据访问凭证。
// 所有读写都必须显式选择一种访问方式：
//   - Elevated(): 服务级凭证，绕过行级归属校验（公开菜单查询、Webhook 写入）
//   - ForUser(uid): 请求级凭证，Owns* 系列方法按账号归属链校验行访问权
//
// 处理器不允许隐式回退到 Elevated。
type Access struct {
	db       *gorm.DB
	userID   uint
	elevated bool
}

// Elevated 服务级访问凭证
func Elevated() Access {
	return Access{db: DB, elevated: true}
}

// ForUser 请求级访问凭证，按 userID 限定行访问范围
func ForUser(userID uint) Access {
	return Access{db: DB, userID: userID}
}

// DB 返回凭证对应的数据库句柄
func (a Access) DB() *gorm.DB {
	return a.db
}

// UserID 凭证绑定的账号 ID，服务级凭证为 0
func (a Access) UserID() uint {
	return a.userID
}

// OwnsBusiness 商家是否归属当前凭证
func (a Access) OwnsBusiness(businessID string) (bool, error) {
	if a.elevated {
		return true, nil
	}
	var count int64
	err := a.db.Model(&models.Business{}).
		Where("id = ? AND user_id = ?", businessID, a.userID).
		Count(&count).Error
	return count > 0, err
}

// OwnsMenu 菜单是否归属当前凭证（经由商家归属链）
func (a Access) OwnsMenu(menuID string) (bool, error) {
	if a.elevated {
		return true, nil
	}
	var count int64
	err := a.db.Model(&models.Menu{}).
		Joins("JOIN businesses ON businesses.id = menus.business_id").
		Where("menus.id = ? AND businesses.user_id = ?", menuID, a.userID).
		Count(&count).Error
	return count > 0, err
}

// OwnsCategory 分类是否归属当前凭证（分类 → 排序索引 → 菜单 → 商家）
func (a Access) OwnsCategory(categoryID string) (bool, error) {
	if a.elevated {
		return true, nil
	}
	var count int64
	err := a.db.Model(&models.MenuCategorySortIndex{}).
		Joins("JOIN menus ON menus.id = menu_category_sort_indexes.menu_id").
		Joins("JOIN businesses ON businesses.id = menus.business_id").
		Where("menu_category_sort_indexes.category_id = ? AND businesses.user_id = ?", categoryID, a.userID).
		Count(&count).Error
	return count > 0, err
}

// OwnsItem 菜品是否归属当前凭证
func (a Access) OwnsItem(itemID string) (bool, error) {
	if a.elevated {
		return true, nil
	}
	var count int64
	err := a.db.Model(&models.MenuCategoryItem{}).
		Joins("JOIN menu_category_sort_indexes ON menu_category_sort_indexes.category_id = menu_category_items.category_id").
		Joins("JOIN menus ON menus.id = menu_category_sort_indexes.menu_id").
		Joins("JOIN businesses ON businesses.id = menus.business_id").
		Where("menu_category_items.id = ? AND businesses.user_id = ?", itemID, a.userID).
		Count(&count).Error
	return count > 0, err
}

// BusinessForUser 当前凭证绑定账号的商家，不存在时返回 (nil, nil)
func (a Access) BusinessForUser() (*models.Business, error) {
	if a.elevated {
		return nil, errors.New("服务级凭证没有绑定账号")
	}
	var business models.Business
	if err := a.db.Where("user_id = ?", a.userID).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &business, nil
}
