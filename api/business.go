package api

import (
	"menunook/database"
	"menunook/middleware"
	"menunook/models"

	"github.com/gin-gonic/gin"
)

// BusinessHandler 商家管理
type BusinessHandler struct{}

// NewBusinessHandler 创建商家处理器
func NewBusinessHandler() *BusinessHandler {
	return &BusinessHandler{}
}

// BusinessCreateRequest 创建商家请求
type BusinessCreateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// BusinessUpdateRequest 更新商家请求
type BusinessUpdateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Create 创建商家，每个账号只能有一个
// @Summary 创建商家
// @Tags 商家
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BusinessCreateRequest true "商家信息"
// @Success 200 {object} Response{data=models.Business} "创建成功"
// @Failure 400 {object} Response "参数错误或已有商家"
// @Router /api/v1/businesses [post]
func (h *BusinessHandler) Create(c *gin.Context) {
	var req BusinessCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	acc := database.ForUser(middleware.GetCurrentUserID(c))

	// 一个账号只能绑定一个商家
	existing, err := acc.BusinessForUser()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询商家失败"))
		return
	}
	if existing != nil {
		BadRequest(c, "当前账号已创建过商家")
		return
	}

	business := models.Business{
		UserID: acc.UserID(),
		Name:   req.Name,
	}
	if err := acc.DB().Create(&business).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建商家失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", business)
}

// GetForUser 查询当前账号的商家，不存在时返回 null
// @Summary 获取当前账号的商家
// @Tags 商家
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Business} "商家信息，不存在时 data 为 null"
// @Router /api/v1/businesses/me [get]
func (h *BusinessHandler) GetForUser(c *gin.Context) {
	acc := database.ForUser(middleware.GetCurrentUserID(c))

	business, err := acc.BusinessForUser()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询商家失败"))
		return
	}
	if business == nil {
		// 尚未创建商家属于正常状态
		SuccessNull(c)
		return
	}

	Success(c, business)
}

// Update 更新商家名称
// @Summary 更新商家
// @Tags 商家
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "商家ID"
// @Param request body BusinessUpdateRequest true "更新信息"
// @Success 200 {object} Response{data=models.Business} "更新成功"
// @Failure 404 {object} Response "商家不存在"
// @Router /api/v1/businesses/{id} [put]
func (h *BusinessHandler) Update(c *gin.Context) {
	businessID := c.Param("id")

	var req BusinessUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

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

	var business models.Business
	if err := acc.DB().Where("id = ?", businessID).First(&business).Error; err != nil {
		NotFound(c, "商家不存在")
		return
	}

	if err := acc.DB().Model(&business).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新商家失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", business)
}
