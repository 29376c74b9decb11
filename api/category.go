package api

import (
	"database/sql"

	"menunook/database"
	"menunook/middleware"
	"menunook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 菜单分类管理
type CategoryHandler struct{}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryCreateRequest 创建分类请求
type CategoryCreateRequest struct {
	MenuID      string `json:"menu_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// Create 创建分类，并在所属菜单的排序末尾追加索引行。
// 分类与其菜单范围内的索引行必须同时存在，所以两次写入放在一个事务里。
// @Summary 创建分类
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryCreateRequest true "分类信息"
// @Success 200 {object} Response{data=models.MenuCategory} "创建成功"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsMenu(req.MenuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return
	}
	if !owns {
		NotFound(c, "菜单不存在")
		return
	}

	category := models.MenuCategory{
		Name:        req.Name,
		Description: req.Description,
	}
	err = acc.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		// 追加到当前排序末尾
		var maxIndex sql.NullInt64
		if err := tx.Model(&models.MenuCategorySortIndex{}).
			Where("menu_id = ?", req.MenuID).
			Select("MAX(order_index)").
			Scan(&maxIndex).Error; err != nil {
			return err
		}
		next := 0
		if maxIndex.Valid {
			next = int(maxIndex.Int64) + 1
		}
		return tx.Create(&models.MenuCategorySortIndex{
			MenuID:     req.MenuID,
			CategoryID: category.ID,
			OrderIndex: next,
		}).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// GetAllByMenu 菜单下的分类，按排序索引升序
// @Summary 获取菜单的分类列表
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {object} Response{data=[]models.MenuCategory} "分类列表"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id}/categories [get]
func (h *CategoryHandler) GetAllByMenu(c *gin.Context) {
	menuID := c.Param("id")

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsMenu(menuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return
	}
	if !owns {
		NotFound(c, "菜单不存在")
		return
	}

	var categories []models.MenuCategory
	if err := acc.DB().Model(&models.MenuCategory{}).
		Joins("JOIN menu_category_sort_indexes ON menu_category_sort_indexes.category_id = menu_categories.id").
		Where("menu_category_sort_indexes.menu_id = ?", menuID).
		Order("menu_category_sort_indexes.order_index ASC, menu_category_sort_indexes.id ASC").
		Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类失败"))
		return
	}

	Success(c, categories)
}

// CategoryUpdateRequest 更新分类请求
type CategoryUpdateRequest struct {
	Name        string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

// Update 更新分类名称/描述
// @Summary 更新分类
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Param request body CategoryUpdateRequest true "更新信息"
// @Success 200 {object} Response{data=models.MenuCategory} "更新成功"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID := c.Param("id")

	var req CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsCategory(categoryID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类失败"))
		return
	}
	if !owns {
		NotFound(c, "分类不存在")
		return
	}

	var category models.MenuCategory
	if err := acc.DB().Where("id = ?", categoryID).First(&category).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", category)
		return
	}

	if err := acc.DB().Model(&category).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新分类失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除分类，索引行与菜品由外键级联清理
// @Summary 删除分类
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Success 200 {object} Response{data=models.MenuCategory} "删除成功"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID := c.Param("id")

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsCategory(categoryID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类失败"))
		return
	}
	if !owns {
		NotFound(c, "分类不存在")
		return
	}

	var category models.MenuCategory
	if err := acc.DB().Where("id = ?", categoryID).First(&category).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	if err := acc.DB().Delete(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除分类失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", category)
}
