package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/services"
)

type Services struct {
	Mailer        services.Mailer
	Auth          services.AuthService
	Subscriptions services.SubscriptionService
	Menu          services.MenuService
	Catalog       services.CatalogService
	Settings      services.SettingsService
	Invites       services.InviteService
	Admin         services.AdminService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	mailer := services.NewMailer(log, c.Mail)
	auth := services.NewAuthService(db, log, r.User, r.UserToken, r.PasswordReset, mailer, services.AuthConfig{
		JWTSecretKey:     cfg.JWTSecretKey,
		AccessTTL:        cfg.AccessTokenTTL,
		RefreshTTL:       cfg.RefreshTokenTTL,
		PasswordResetTTL: cfg.PasswordResetTTL,
		PublicBaseURL:    cfg.PublicBaseURL,
	})
	menu := services.NewMenuService(db, log, r.Shop, r.ShopSettings, r.Category, r.Product, c.Cache, cfg.MenuCacheTTL)

	return Services{
		Mailer:        mailer,
		Auth:          auth,
		Subscriptions: services.NewSubscriptionService(db, log, r.Shop),
		Menu:          menu,
		Catalog:       services.NewCatalogService(db, log, r.Category, r.Product, c.Bucket, menu),
		Settings: services.NewSettingsService(db, log, r.Shop, r.ShopSettings, c.Bucket, menu, services.SettingsConfig{
			LogoFontPath: cfg.LogoFontPath,
		}),
		Invites: services.NewInviteService(db, log, r.Invite, r.User, r.Shop, r.ShopUser, r.ShopSettings, mailer, services.InviteConfig{
			PublicBaseURL: cfg.PublicBaseURL,
			DefaultDays:   cfg.InviteDefaultDays,
			TrialDays:     cfg.TrialDays,
		}),
		Admin: services.NewAdminService(db, log, r.Shop, r.ShopUser, r.ShopSettings, r.Category, r.Product,
			r.User, r.UserToken, r.PasswordReset, r.Invite, auth, menu, c.Bucket),
	}
}
