package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/scandine-backend/internal/domain"
	httpH "github.com/yungbote/scandine-backend/internal/http/handlers"
	httpMW "github.com/yungbote/scandine-backend/internal/http/middleware"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware   *httpMW.AuthMiddleware
	TenantMiddleware *httpMW.TenantMiddleware

	HealthHandler   *httpH.HealthHandler
	AuthHandler     *httpH.AuthHandler
	InviteHandler   *httpH.InviteHandler
	CatalogHandler  *httpH.CatalogHandler
	SettingsHandler *httpH.SettingsHandler
	MenuHandler     *httpH.MenuHandler
	AdminHandler    *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Public menu
	if cfg.MenuHandler != nil {
		r.GET("/m/:slug", cfg.MenuHandler.RenderMenu)
	}

	api := r.Group("/api")
	{
		if cfg.MenuHandler != nil {
			api.GET("/menu/:slug", cfg.MenuHandler.GetMenu)
		}
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
			api.POST("/password/forgot", cfg.AuthHandler.ForgotPassword)
			api.POST("/password/reset", cfg.AuthHandler.ResetPassword)
		}
		if cfg.InviteHandler != nil {
			api.GET("/invites/:token", cfg.InviteHandler.Validate)
			api.POST("/register", cfg.InviteHandler.Register)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	if cfg.AuthHandler != nil {
		protected.POST("/logout", cfg.AuthHandler.Logout)
		protected.GET("/me", cfg.AuthHandler.Me)
	}

	// Owner dashboard: reads need a live shop, writes need a paid plan.
	if cfg.TenantMiddleware != nil {
		owner := protected.Group("/owner")
		owner.Use(cfg.TenantMiddleware.RequireShop())
		edit := owner.Group("/")
		edit.Use(cfg.TenantMiddleware.RequireEditablePlan())

		if cfg.SettingsHandler != nil {
			owner.GET("/shop", cfg.SettingsHandler.Shop)
			owner.GET("/settings", cfg.SettingsHandler.Get)
			edit.PUT("/settings", cfg.SettingsHandler.Update)
			edit.POST("/settings/logo/initials", cfg.SettingsHandler.GenerateLogo)
		}
		if cfg.CatalogHandler != nil {
			owner.GET("/categories", cfg.CatalogHandler.ListCategories)
			edit.POST("/categories", cfg.CatalogHandler.CreateCategory)
			edit.PUT("/categories/order", cfg.CatalogHandler.ReorderCategories)
			edit.PATCH("/categories/:id", cfg.CatalogHandler.UpdateCategory)
			edit.DELETE("/categories/:id", cfg.CatalogHandler.DeleteCategory)

			owner.GET("/products", cfg.CatalogHandler.ListProducts)
			owner.GET("/products/:id", cfg.CatalogHandler.GetProduct)
			edit.POST("/products", cfg.CatalogHandler.CreateProduct)
			edit.PUT("/products/:id", cfg.CatalogHandler.UpdateProduct)
			edit.DELETE("/products/:id", cfg.CatalogHandler.DeleteProduct)
		}
	}

	// Superadmin console
	if cfg.AdminHandler != nil {
		admin := protected.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleSuperAdmin))

		admin.GET("/stats", cfg.AdminHandler.Stats)

		admin.GET("/shops", cfg.AdminHandler.ListShops)
		admin.GET("/shops/:id", cfg.AdminHandler.GetShop)
		admin.POST("/shops/:id/toggle-status", cfg.AdminHandler.ToggleShopStatus)
		admin.PATCH("/shops/:id/plan", cfg.AdminHandler.UpdateShopPlan)
		admin.DELETE("/shops/:id", cfg.AdminHandler.DeleteShop)
		admin.DELETE("/products/:id", cfg.AdminHandler.ForceDeleteProduct)

		admin.GET("/invites", cfg.AdminHandler.ListInvites)
		admin.POST("/invites", cfg.AdminHandler.CreateInvite)
		admin.DELETE("/invites/:id", cfg.AdminHandler.DeleteInvite)

		admin.GET("/users", cfg.AdminHandler.ListUsers)
		admin.DELETE("/users/:id", cfg.AdminHandler.DeleteUser)
		admin.POST("/users/:id/reset-link", cfg.AdminHandler.IssuePasswordReset)
	}

	return r
}
