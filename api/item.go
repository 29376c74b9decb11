package api

import (
	"database/sql"

	"menunook/database"
	"menunook/middleware"
	"menunook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ItemHandler 菜品管理
type ItemHandler struct{}

// NewItemHandler 创建菜品处理器
func NewItemHandler() *ItemHandler {
	return &ItemHandler{}
}

// ItemCreateRequest 创建菜品请求
type ItemCreateRequest struct {
	CategoryID  string  `json:"category_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"omitempty,max=255"`
	Price       float64 `json:"price" binding:"gte=0"`
}

// ItemUpdateRequest 更新菜品请求
type ItemUpdateRequest struct {
	Name        string   `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=255"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
}

// ItemOrderRequest 菜品重排序请求，提交整个新顺序
type ItemOrderRequest struct {
	NewItemOrder []OrderPair `json:"new_item_order" binding:"required,min=1,dive"`
}

// Create 创建菜品，并在所属分类的排序末尾追加索引行
// @Summary 创建菜品
// @Tags 菜品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ItemCreateRequest true "菜品信息"
// @Success 200 {object} Response{data=models.MenuCategoryItem} "创建成功"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	var req ItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsCategory(req.CategoryID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询分类失败"))
		return
	}
	if !owns {
		NotFound(c, "分类不存在")
		return
	}

	item := models.MenuCategoryItem{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	err = acc.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		var maxIndex sql.NullInt64
		if err := tx.Model(&models.MenuCategoryItemSortIndex{}).
			Where("category_id = ?", req.CategoryID).
			Select("MAX(order_index)").
			Scan(&maxIndex).Error; err != nil {
			return err
		}
		next := 0
		if maxIndex.Valid {
			next = int(maxIndex.Int64) + 1
		}
		return tx.Create(&models.MenuCategoryItemSortIndex{
			CategoryID: req.CategoryID,
			ItemID:     item.ID,
			OrderIndex: next,
		}).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建菜品失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", item)
}

// GetSortedForCategory 分类的菜品索引行，按 order_index 升序，附带菜品实体
// @Summary 获取分类的菜品排序索引
// @Tags 菜品
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Success 200 {object} Response{data=[]models.MenuCategoryItemSortIndex} "索引+菜品数组"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id}/item-indexes [get]
func (h *ItemHandler) GetSortedForCategory(c *gin.Context) {
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

	var indexRows []models.MenuCategoryItemSortIndex
	if err := acc.DB().Where("category_id = ?", categoryID).
		Order("order_index ASC, id ASC").
		Find(&indexRows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜品排序索引失败"))
		return
	}

	if len(indexRows) > 0 {
		itemIDs := make([]string, 0, len(indexRows))
		for _, row := range indexRows {
			itemIDs = append(itemIDs, row.ItemID)
		}
		var items []models.MenuCategoryItem
		if err := acc.DB().Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询菜品失败"))
			return
		}
		itemByID := make(map[string]models.MenuCategoryItem, len(items))
		for _, item := range items {
			itemByID[item.ID] = item
		}
		for i := range indexRows {
			indexRows[i].Item = itemByID[indexRows[i].ItemID]
		}
	}

	Success(c, indexRows)
}

// Update 更新菜品名称/描述/价格
// @Summary 更新菜品
// @Tags 菜品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜品ID"
// @Param request body ItemUpdateRequest true "更新信息"
// @Success 200 {object} Response{data=models.MenuCategoryItem} "更新成功"
// @Failure 404 {object} Response "菜品不存在"
// @Router /api/v1/items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	itemID := c.Param("id")

	var req ItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsItem(itemID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜品失败"))
		return
	}
	if !owns {
		NotFound(c, "菜品不存在")
		return
	}

	var item models.MenuCategoryItem
	if err := acc.DB().Where("id = ?", itemID).First(&item).Error; err != nil {
		NotFound(c, "菜品不存在")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", item)
		return
	}

	if err := acc.DB().Model(&item).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新菜品失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", item)
}

// Delete 删除菜品，排序索引行由外键级联清理
// @Summary 删除菜品
// @Tags 菜品
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜品ID"
// @Success 200 {object} Response{data=models.MenuCategoryItem} "删除成功"
// @Failure 404 {object} Response "菜品不存在"
// @Router /api/v1/items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID := c.Param("id")

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsItem(itemID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜品失败"))
		return
	}
	if !owns {
		NotFound(c, "菜品不存在")
		return
	}

	var item models.MenuCategoryItem
	if err := acc.DB().Where("id = ?", itemID).First(&item).Error; err != nil {
		NotFound(c, "菜品不存在")
		return
	}

	if err := acc.DB().Delete(&item).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除菜品失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", item)
}

// UpdateOrder 覆写分类内菜品顺序，语义与分类重排序一致
// @Summary 更新菜品顺序
// @Tags 菜品
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Param request body ItemOrderRequest true "新的完整顺序"
// @Success 200 {object} Response "更新成功"
// @Failure 400 {object} Response "参数错误或索引行不属于该分类"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id}/item-order [put]
func (h *ItemHandler) UpdateOrder(c *gin.Context) {
	categoryID := c.Param("id")
	if categoryID == "" {
		BadRequest(c, "分类ID不能为空")
		return
	}

	var req ItemOrderRequest
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

	indexIDs := make([]string, 0, len(req.NewItemOrder))
	for _, pair := range req.NewItemOrder {
		indexIDs = append(indexIDs, pair.IndexID)
	}

	// 范围校验：提交的索引行必须全部属于该分类
	var count int64
	if err := acc.DB().Model(&models.MenuCategoryItemSortIndex{}).
		Where("category_id = ? AND id IN ?", categoryID, indexIDs).
		Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜品排序索引失败"))
		return
	}
	if count != int64(len(indexIDs)) {
		BadRequest(c, "存在不属于该分类的排序索引")
		return
	}

	err = acc.DB().Transaction(func(tx *gorm.DB) error {
		for position, pair := range req.NewItemOrder {
			if err := tx.Model(&models.MenuCategoryItemSortIndex{}).
				Where("id = ? AND category_id = ?", pair.IndexID, categoryID).
				Update("order_index", position).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "更新菜品顺序失败"))
		return
	}

	SuccessWithMessage(c, "菜品顺序已更新", nil)
}
