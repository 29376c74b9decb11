package router

import (
	"time"

	"menunook/api"
	"menunook/config"
	_ "menunook/docs"
	"menunook/middleware"
	"menunook/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, storage service.ObjectStorage, checkout service.CheckoutCreator) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authHandler := api.NewAuthHandler(cfg)
	businessHandler := api.NewBusinessHandler()
	menuHandler := api.NewMenuHandler(cfg, storage)
	categoryHandler := api.NewCategoryHandler()
	menuCategoryHandler := api.NewMenuCategoryHandler()
	itemHandler := api.NewItemHandler()
	subscriptionHandler := api.NewSubscriptionHandler()
	qrCodeHandler := api.NewQRCodeHandler()
	stripeHandler := api.NewStripeHandler(cfg, checkout)
	exportHandler := api.NewExportHandler()

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(5, time.Minute), authHandler.Login)
		}

		// 公开路由：顾客端菜单访问与 Stripe 回调，使用服务级数据访问凭证
		public := v1.Group("/public")
		{
			public.GET("/menus/:id", menuHandler.GetPublic)
			public.GET("/businesses/:id/subscription", subscriptionHandler.GetForBusiness)
			public.POST("/stripe/webhook", stripeHandler.Webhook)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)

			// 商家
			authorized.POST("/businesses", businessHandler.Create)
			authorized.GET("/businesses/me", businessHandler.GetForUser)
			authorized.PUT("/businesses/:id", businessHandler.Update)
			authorized.GET("/businesses/:id/menus", menuHandler.GetAllForBusiness)

			// 菜单
			menus := authorized.Group("/menus")
			{
				menus.POST("", menuHandler.Create)
				menus.PUT("/:id", menuHandler.Update)
				menus.DELETE("/:id", menuHandler.Delete)
				menus.GET("/:id/preview", menuHandler.GetPreview)
				menus.GET("/:id/categories", categoryHandler.GetAllByMenu)
				menus.GET("/:id/category-indexes", menuCategoryHandler.GetAllSortedByIndex)
				menus.PUT("/:id/category-order", menuCategoryHandler.UpdateOrder)
				menus.GET("/:id/qr-code", qrCodeHandler.GetPublicURLForMenu)
				menus.GET("/:id/export/csv", exportHandler.ExportCSV)
				menus.GET("/:id/export/excel", exportHandler.ExportExcel)
			}

			// 分类与菜品
			categories := authorized.Group("/categories")
			{
				categories.POST("", categoryHandler.Create)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
				categories.GET("/:id/item-indexes", itemHandler.GetSortedForCategory)
				categories.PUT("/:id/item-order", itemHandler.UpdateOrder)
			}
			items := authorized.Group("/items")
			{
				items.POST("", itemHandler.Create)
				items.PUT("/:id", itemHandler.Update)
				items.DELETE("/:id", itemHandler.Delete)
			}

			// 订阅
			authorized.GET("/subscriptions/me", subscriptionHandler.GetForUser)
			authorized.POST("/stripe/checkout-session", stripeHandler.CreateCheckoutSession)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
