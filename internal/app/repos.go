package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	PasswordReset repos.PasswordResetRepo
	Shop          repos.ShopRepo
	ShopUser      repos.ShopUserRepo
	ShopSettings  repos.ShopSettingsRepo
	Category      repos.CategoryRepo
	Product       repos.ProductRepo
	Invite        repos.InviteRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		PasswordReset: repos.NewPasswordResetRepo(db, log),
		Shop:          repos.NewShopRepo(db, log),
		ShopUser:      repos.NewShopUserRepo(db, log),
		ShopSettings:  repos.NewShopSettingsRepo(db, log),
		Category:      repos.NewCategoryRepo(db, log),
		Product:       repos.NewProductRepo(db, log),
		Invite:        repos.NewInviteRepo(db, log),
	}
}
