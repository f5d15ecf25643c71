package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/scandine-backend/internal/http"
	httpH "github.com/yungbote/scandine-backend/internal/http/handlers"
	httpMW "github.com/yungbote/scandine-backend/internal/http/middleware"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

func wireRouterConfig(db *gorm.DB, log *logger.Logger, cfg Config, serviceName string, r Repos, s Services) apphttp.RouterConfig {
	log.Info("Wiring HTTP...")
	return apphttp.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware:   httpMW.NewAuthMiddleware(log, s.Auth),
		TenantMiddleware: httpMW.NewTenantMiddleware(log, r.ShopUser, s.Subscriptions),

		HealthHandler:   httpH.NewHealthHandler(db),
		AuthHandler:     httpH.NewAuthHandler(s.Auth),
		InviteHandler:   httpH.NewInviteHandler(s.Invites),
		CatalogHandler:  httpH.NewCatalogHandler(log, s.Catalog),
		SettingsHandler: httpH.NewSettingsHandler(s.Settings),
		MenuHandler:     httpH.NewMenuHandler(s.Menu),
		AdminHandler:    httpH.NewAdminHandler(log, s.Admin, s.Invites),
	}
}
