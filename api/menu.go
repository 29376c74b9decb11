package api

import (
	"log"

	"menunook/config"
	"menunook/database"
	"menunook/middleware"
	"menunook/models"
	"menunook/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MenuHandler 菜单管理
type MenuHandler struct {
	cfg     *config.Config
	storage service.ObjectStorage
}

// NewMenuHandler 创建菜单处理器
func NewMenuHandler(cfg *config.Config, storage service.ObjectStorage) *MenuHandler {
	return &MenuHandler{cfg: cfg, storage: storage}
}

// MenuCreateRequest 创建菜单请求
type MenuCreateRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=32"`
	BusinessID string `json:"business_id" binding:"required,uuid"`
	BaseURL    string `json:"base_url" binding:"required,url"`
}

// MenuUpdateRequest 更新菜单请求
type MenuUpdateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=32"`
}

// Create 创建菜单，并生成二维码上传到对象存储。
// 菜单行写入后任何一步失败都会回滚删除该菜单行，保证不留下没有二维码的孤儿菜单。
// @Summary 创建菜单
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MenuCreateRequest true "菜单信息"
// @Success 200 {object} Response{data=models.Menu} "创建成功"
// @Failure 400 {object} Response "参数错误或超出菜单数量上限"
// @Failure 404 {object} Response "商家不存在"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req MenuCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsBusiness(req.BusinessID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询商家失败"))
		return
	}
	if !owns {
		NotFound(c, "商家不存在")
		return
	}

	// 菜单数量上限
	var menuCount int64
	if err := acc.DB().Model(&models.Menu{}).
		Where("business_id = ?", req.BusinessID).
		Count(&menuCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单数量失败"))
		return
	}
	if menuCount >= int64(h.cfg.Business.MaxMenus) {
		BadRequest(c, "已达到菜单数量上限")
		return
	}

	// 1. 写入菜单行，此步失败无需回滚
	menu := models.Menu{
		BusinessID: req.BusinessID,
		Name:       req.Name,
	}
	if err := acc.DB().Create(&menu).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建菜单失败"))
		return
	}

	// 2. 渲染二维码
	png, err := service.RenderMenuQRCode(req.BaseURL, menu.ID)
	if err != nil {
		h.rollbackMenu(c, acc, menu.ID, err)
		return
	}

	// 3. 上传对象存储
	filePath := service.GenerateQRFilePath(req.BusinessID, menu.ID)
	if err := h.storage.Upload(c.Request.Context(), filePath, png, "image/png"); err != nil {
		h.rollbackMenu(c, acc, menu.ID, err)
		return
	}

	// 4. 写入二维码记录
	qrCode := models.MenuQRCode{
		MenuID:    menu.ID,
		PublicURL: h.storage.PublicURL(filePath),
	}
	if err := acc.DB().Create(&qrCode).Error; err != nil {
		h.rollbackMenu(c, acc, menu.ID, err)
		return
	}

	SuccessWithMessage(c, "创建成功", menu)
}

// rollbackMenu 补偿删除已写入的菜单行，并返回导致回滚的原始错误。
// 补偿删除本身失败时返回可区分的提示，便于运维发现孤儿菜单行。
func (h *MenuHandler) rollbackMenu(c *gin.Context, acc database.Access, menuID string, cause error) {
	if delErr := acc.DB().Where("id = ?", menuID).Delete(&models.Menu{}).Error; delErr != nil {
		log.Printf("菜单 %s 补偿删除失败: %v（原始错误: %v）", menuID, delErr, cause)
		InternalError(c, "菜单创建回滚失败，存在残留数据需人工清理: "+SafeErrorMessage(cause, "内部错误"))
		return
	}
	InternalError(c, SafeErrorMessage(cause, "创建菜单失败"))
}

// GetAllForBusiness 商家的全部菜单
// @Summary 获取商家的菜单列表
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Param id path string true "商家ID"
// @Success 200 {object} Response{data=[]models.Menu} "菜单列表"
// @Failure 404 {object} Response "商家不存在"
// @Router /api/v1/businesses/{id}/menus [get]
func (h *MenuHandler) GetAllForBusiness(c *gin.Context) {
	businessID := c.Param("id")

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsBusiness(businessID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询商家失败"))
		return
	}
	if !owns {
		NotFound(c, "商家不存在")
		return
	}

	var menus []models.Menu
	if err := acc.DB().Where("business_id = ?", businessID).
		Order("created_at ASC").
		Find(&menus).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return
	}

	Success(c, menus)
}

// Update 更新菜单名称
// @Summary 更新菜单
// @Tags 菜单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Param request body MenuUpdateRequest true "更新信息"
// @Success 200 {object} Response{data=models.Menu} "更新成功"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	menuID := c.Param("id")

	var req MenuUpdateRequest
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

	var menu models.Menu
	if err := acc.DB().Where("id = ?", menuID).First(&menu).Error; err != nil {
		NotFound(c, "菜单不存在")
		return
	}

	if err := acc.DB().Model(&menu).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新菜单失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", menu)
}

// Delete 删除菜单并返回被删除的行。
// 分类只通过排序索引行挂在菜单下，数据库级联不会触达，需要在同一事务里显式删除；
// 菜品与各索引行随后由外键级联清理。
// @Summary 删除菜单
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {object} Response{data=models.Menu} "删除成功，返回被删除的菜单"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id} [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
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

	var menu models.Menu
	if err := acc.DB().Where("id = ?", menuID).First(&menu).Error; err != nil {
		NotFound(c, "菜单不存在")
		return
	}

	err = acc.DB().Transaction(func(tx *gorm.DB) error {
		var categoryIDs []string
		if err := tx.Model(&models.MenuCategorySortIndex{}).
			Where("menu_id = ?", menuID).
			Pluck("category_id", &categoryIDs).Error; err != nil {
			return err
		}
		if len(categoryIDs) > 0 {
			if err := tx.Where("id IN ?", categoryIDs).Delete(&models.MenuCategory{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", menuID).Delete(&models.Menu{}).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除菜单失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", menu)
}

// GetPreview 商家预览自己的菜单（请求级凭证）
// @Summary 预览菜单
// @Tags 菜单
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {object} Response{data=service.MenuView} "组装后的菜单，不存在时 data 为 null"
// @Router /api/v1/menus/{id}/preview [get]
func (h *MenuHandler) GetPreview(c *gin.Context) {
	menuID := c.Param("id")

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsMenu(menuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return
	}
	if !owns {
		// 预览不存在或不属于自己的菜单与公开查询一致，返回 null
		SuccessNull(c)
		return
	}

	view, err := service.FetchMenuWithCategories(acc.DB(), menuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return
	}
	if view == nil {
		SuccessNull(c)
		return
	}

	Success(c, view)
}

// GetPublic 顾客访问的公开菜单（服务级凭证，无需登录）
// @Summary 公开菜单
// @Tags 菜单
// @Produce json
// @Param id path string true "菜单ID"
// @Success 200 {object} Response{data=service.MenuView} "组装后的菜单，不存在时 data 为 null"
// @Router /api/v1/public/menus/{id} [get]
func (h *MenuHandler) GetPublic(c *gin.Context) {
	menuID := c.Param("id")

	acc := database.Elevated()
	view, err := service.FetchMenuWithCategories(acc.DB(), menuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return
	}
	if view == nil {
		// 菜单不存在属于正常空结果，前端据此渲染"未找到"页面
		SuccessNull(c)
		return
	}

	Success(c, view)
}
