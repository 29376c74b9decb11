package api

import (
	"menunook/database"
	"menunook/middleware"
	"menunook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MenuCategoryHandler 菜单内分类排序管理
type MenuCategoryHandler struct{}

// NewMenuCategoryHandler 创建分类排序处理器
func NewMenuCategoryHandler() *MenuCategoryHandler {
	return &MenuCategoryHandler{}
}

// OrderPair 重排序条目：索引行 ID + 对应实体 ID
type OrderPair struct {
	IndexID  string `json:"index_id" binding:"required,uuid"`
	EntityID string `json:"entity_id" binding:"required,uuid"`
}

// CategoryOrderRequest 分类重排序请求，提交整个新顺序而非单步移动
type CategoryOrderRequest struct {
	NewCategoryOrder []OrderPair `json:"new_category_order" binding:"required,min=1,dive"`
}

// GetAllSortedByIndex 菜单的分类索引行，按 order_index 升序，附带分类实体
// @Summary 获取菜单的分类排序索引
// @Tags 分类排序
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {object} Response{data=[]models.MenuCategorySortIndex} "索引+分类数组"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id}/category-indexes [get]
func (h *MenuCategoryHandler) GetAllSortedByIndex(c *gin.Context) {
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

	var indexRows []models.MenuCategorySortIndex
	if err := acc.DB().Where("menu_id = ?", menuID).
		Order("order_index ASC, id ASC").
		Find(&indexRows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类排序索引失败"))
		return
	}

	// 附带分类实体
	if len(indexRows) > 0 {
		categoryIDs := make([]string, 0, len(indexRows))
		for _, row := range indexRows {
			categoryIDs = append(categoryIDs, row.CategoryID)
		}
		var categories []models.MenuCategory
		if err := acc.DB().Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询分类失败"))
			return
		}
		categoryByID := make(map[string]models.MenuCategory, len(categories))
		for _, cat := range categories {
			categoryByID[cat.ID] = cat
		}
		for i := range indexRows {
			indexRows[i].Category = categoryByID[indexRows[i].CategoryID]
		}
	}

	Success(c, indexRows)
}

// UpdateOrder 覆写菜单内分类顺序。
// 请求携带完整的新顺序，order_index 取条目在数组中的位置；
// 写入前校验每个索引行确实属于该菜单，范围不符时整体拒绝。
// @Summary 更新分类顺序
// @Tags 分类排序
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Param request body CategoryOrderRequest true "新的完整顺序"
// @Success 200 {object} Response "更新成功"
// @Failure 400 {object} Response "参数错误或索引行不属于该菜单"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id}/category-order [put]
func (h *MenuCategoryHandler) UpdateOrder(c *gin.Context) {
	menuID := c.Param("id")
	if menuID == "" {
		BadRequest(c, "菜单ID不能为空")
		return
	}

	var req CategoryOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

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

	indexIDs := make([]string, 0, len(req.NewCategoryOrder))
	for _, pair := range req.NewCategoryOrder {
		indexIDs = append(indexIDs, pair.IndexID)
	}

	// 范围校验：提交的索引行必须全部属于该菜单
	var count int64
	if err := acc.DB().Model(&models.MenuCategorySortIndex{}).
		Where("menu_id = ? AND id IN ?", menuID, indexIDs).
		Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类排序索引失败"))
		return
	}
	if count != int64(len(indexIDs)) {
		BadRequest(c, "存在不属于该菜单的排序索引")
		return
	}

	// 以条目在数组中的位置覆写 order_index，单事务保证整体生效
	err = acc.DB().Transaction(func(tx *gorm.DB) error {
		for position, pair := range req.NewCategoryOrder {
			if err := tx.Model(&models.MenuCategorySortIndex{}).
				Where("id = ? AND menu_id = ?", pair.IndexID, menuID).
				Update("order_index", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "更新分类顺序失败"))
		return
	}

	SuccessWithMessage(c, "分类顺序已更新", nil)
}
