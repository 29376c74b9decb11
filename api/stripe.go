package api

import (
	"encoding/json"
	"io"
	"log"
	"strconv"
	"time"

	"menunook/config"
	"menunook/database"
	"menunook/middleware"
	"menunook/models"
	"menunook/service"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm/clause"
)

// StripeHandler Stripe 结账与 Webhook
type StripeHandler struct {
	cfg          *config.Config
	checkout     service.CheckoutCreator
	emailService *service.EmailService
}

// NewStripeHandler 创建 Stripe 处理器
func NewStripeHandler(cfg *config.Config, checkout service.CheckoutCreator) *StripeHandler {
	return &StripeHandler{
		cfg:          cfg,
		checkout:     checkout,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// CreateCheckoutSession 创建订阅结账会话
// @Summary 创建 Stripe 结账会话
// @Tags 订阅
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "跳转 URL"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/stripe/checkout-session [post]
func (h *StripeHandler) CreateCheckoutSession(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "账号不存在")
		return
	}

	url, err := h.checkout.CreateCheckoutSession(user.Email, userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建结账会话失败"))
		return
	}

	Success(c, gin.H{"url": url})
}

// Webhook Stripe 事件回调。
// 签名校验通过后按事件类型更新订阅状态，写入走服务级凭证（回调没有用户上下文）。
// @Summary Stripe Webhook
// @Tags 订阅
// @Accept json
// @Produce json
// @Success 200 {object} Response "处理成功"
// @Failure 400 {object} Response "签名校验失败"
// @Router /api/v1/public/stripe/webhook [post]
func (h *StripeHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "读取请求体失败")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.cfg.Stripe.WebhookSecret)
	if err != nil {
		BadRequest(c, "Webhook 签名校验失败")
		return
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			BadRequest(c, "解析订阅事件失败")
			return
		}
		if err := h.upsertSubscription(&sub); err != nil {
			InternalError(c, SafeErrorMessage(err, "更新订阅失败"))
			return
		}
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			BadRequest(c, "解析订阅事件失败")
			return
		}
		if err := database.Elevated().DB().Model(&models.Subscription{}).
			Where("stripe_subscription_id = ?", sub.ID).
			Update("status", models.SubscriptionStatusCanceled).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新订阅失败"))
			return
		}
	default:
		// 其余事件确认收到即可
		log.Printf("忽略 Stripe 事件: %s", event.Type)
	}

	Success(c, nil)
}

// upsertSubscription 按事件内容写入商家订阅，商家通过 metadata 中的 userId 定位
func (h *StripeHandler) upsertSubscription(sub *stripe.Subscription) error {
	uid, err := strconv.ParseUint(sub.Metadata["userId"], 10, 32)
	if err != nil {
		log.Printf("Stripe 订阅 %s 缺少有效的 userId metadata", sub.ID)
		return err
	}

	acc := database.Elevated()
	var business models.Business
	if err := acc.DB().Where("user_id = ?", uint(uid)).First(&business).Error; err != nil {
		return err
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	record := models.Subscription{
		BusinessID:           business.ID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0),
	}
	if err := acc.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "stripe_subscription_id", "status", "current_period_end"}),
	}).Create(&record).Error; err != nil {
		return err
	}

	// 订阅生效后通知商家，发送失败只记录日志
	if record.Status == models.SubscriptionStatusActive {
		var user models.User
		if err := acc.DB().First(&user, business.UserID).Error; err == nil && user.Email != "" {
			if err := h.emailService.SendSubscriptionActivatedEmail(user.Email, business.Name); err != nil {
				log.Printf("订阅通知邮件发送失败: %v", err)
			}
		}
	}

	return nil
}
