package repos

import (
	"github.com/yungbote/scandine-backend/internal/data/repos/auth"
	"github.com/yungbote/scandine-backend/internal/data/repos/catalog"
	"github.com/yungbote/scandine-backend/internal/data/repos/onboarding"
	"github.com/yungbote/scandine-backend/internal/data/repos/shop"
	"github.com/yungbote/scandine-backend/internal/data/repos/user"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type PasswordResetRepo = auth.PasswordResetRepo

type ShopRepo = shop.ShopRepo
type ShopUserRepo = shop.ShopUserRepo
type ShopSettingsRepo = shop.ShopSettingsRepo
type ShopListFilter = shop.ListFilter
type ShopStats = shop.Stats

type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter

type InviteRepo = onboarding.InviteRepo
type InviteStats = onboarding.InviteStats

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewPasswordResetRepo(db *gorm.DB, baseLog *logger.Logger) PasswordResetRepo {
	return auth.NewPasswordResetRepo(db, baseLog)
}

func NewShopRepo(db *gorm.DB, baseLog *logger.Logger) ShopRepo { return shop.NewShopRepo(db, baseLog) }
func NewShopUserRepo(db *gorm.DB, baseLog *logger.Logger) ShopUserRepo {
	return shop.NewShopUserRepo(db, baseLog)
}
func NewShopSettingsRepo(db *gorm.DB, baseLog *logger.Logger) ShopSettingsRepo {
	return shop.NewShopSettingsRepo(db, baseLog)
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}

func NewInviteRepo(db *gorm.DB, baseLog *logger.Logger) InviteRepo {
	return onboarding.NewInviteRepo(db, baseLog)
}

// NormalizeEmail is re-exported for services that compare addresses before insert.
func NormalizeEmail(email string) string { return user.NormalizeEmail(email) }
