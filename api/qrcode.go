package api

import (
	"menunook/database"
	"menunook/middleware"
	"menunook/models"

	"github.com/gin-gonic/gin"
)

// QRCodeHandler 菜单二维码查询
type QRCodeHandler struct{}

// NewQRCodeHandler 创建二维码处理器
func NewQRCodeHandler() *QRCodeHandler {
	return &QRCodeHandler{}
}

// GetPublicURLForMenu 菜单二维码的公开访问地址
// @Summary 获取菜单二维码地址
// @Tags 二维码
// @Produce json
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {object} Response "二维码公开地址"
// @Failure 404 {object} Response "菜单或二维码不存在"
// @Router /api/v1/menus/{id}/qr-code [get]
func (h *QRCodeHandler) GetPublicURLForMenu(c *gin.Context) {
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

	// 菜单与二维码记录同时创建，缺失说明数据异常
	var qrCode models.MenuQRCode
	if err := acc.DB().Where("menu_id = ?", menuID).First(&qrCode).Error; err != nil {
		NotFound(c, "二维码不存在")
		return
	}

	Success(c, gin.H{"public_url": qrCode.PublicURL})
}
