package api

import (
	"errors"

	"menunook/database"
	"menunook/middleware"
	"menunook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubscriptionHandler 订阅查询
type SubscriptionHandler struct{}

// NewSubscriptionHandler 创建订阅处理器
func NewSubscriptionHandler() *SubscriptionHandler {
	return &SubscriptionHandler{}
}

// GetForBusiness 商家的订阅（公开接口，顾客端据此判断菜单是否可见）
// @Summary 获取商家订阅
// @Tags 订阅
// @Produce json
// @Param id path string true "商家ID"
// @Success 200 {object} Response{data=models.Subscription} "订阅信息，不存在时 data 为 null"
// @Router /api/v1/public/businesses/{id}/subscription [get]
func (h *SubscriptionHandler) GetForBusiness(c *gin.Context) {
	businessID := c.Param("id")

	acc := database.Elevated()
	var subscription models.Subscription
	if err := acc.DB().Where("business_id = ?", businessID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 尚未订阅属于正常状态
			SuccessNull(c)
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询订阅失败"))
		return
	}

	Success(c, subscription)
}

// GetForUser 当前账号商家的订阅
// @Summary 获取当前账号的订阅
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Subscription} "订阅信息，不存在时 data 为 null"
// @Router /api/v1/subscriptions/me [get]
func (h *SubscriptionHandler) GetForUser(c *gin.Context) {
	acc := database.ForUser(middleware.GetCurrentUserID(c))

	business, err := acc.BusinessForUser()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询商家失败"))
		return
	}
	if business == nil {
		SuccessNull(c)
		return
	}

	var subscription models.Subscription
	if err := acc.DB().Where("business_id = ?", business.ID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			SuccessNull(c)
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询订阅失败"))
		return
	}

	Success(c, subscription)
}
