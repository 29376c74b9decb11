package service

import (
	"errors"
	"fmt"

	"menunook/config"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// CheckoutCreator Stripe 结账会话创建，测试中可替换为假实现
type CheckoutCreator interface {
	CreateCheckoutSession(customerEmail string, userID uint) (string, error)
}

// StripeService Stripe 支付服务
type StripeService struct {
	cfg *config.StripeConfig
}

// NewStripeService 创建 Stripe 服务
func NewStripeService(cfg *config.StripeConfig) *StripeService {
	stripe.Key = cfg.SecretKey
	return &StripeService{cfg: cfg}
}

// CreateCheckoutSession 创建订阅模式的结账会话，返回跳转 URL。
// userId 写入会话和订阅两层 metadata，Webhook 回调时据此定位商家。
func (s *StripeService) CreateCheckoutSession(customerEmail string, userID uint) (string, error) {
	uid := fmt.Sprintf("%d", userID)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:      stripe.String(customerEmail),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.AppDomain + "/?success=true"),
		CancelURL:  stripe.String(s.cfg.AppDomain + "/?canceled=true"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"userId": uid},
		},
	}
	params.AddMetadata("userId", uid)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("创建 Stripe 结账会话失败: %w", err)
	}
	if sess.URL == "" {
		return "", errors.New("创建 Stripe 结账会话失败: 未返回跳转 URL")
	}
	return sess.URL, nil
}
