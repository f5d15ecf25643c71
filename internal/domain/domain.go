package domain

import (
	"github.com/yungbote/scandine-backend/internal/domain/auth"
	"github.com/yungbote/scandine-backend/internal/domain/catalog"
	"github.com/yungbote/scandine-backend/internal/domain/onboarding"
	"github.com/yungbote/scandine-backend/internal/domain/shop"
	"github.com/yungbote/scandine-backend/internal/domain/user"
)

type (
	User          = user.User
	Role          = user.Role
	UserToken     = auth.UserToken
	PasswordReset = auth.PasswordReset

	Shop         = shop.Shop
	Plan         = shop.Plan
	ShopStatus   = shop.Status
	ShopUser     = shop.ShopUser
	ShopSettings = shop.ShopSettings
	SocialLink   = shop.SocialLink

	Category = catalog.Category
	Product  = catalog.Product

	Invite = onboarding.Invite
)

const (
	RoleOwner      = user.RoleOwner
	RoleSuperAdmin = user.RoleSuperAdmin

	PlanFree    = shop.PlanFree
	PlanPro     = shop.PlanPro
	PlanPremium = shop.PlanPremium

	ShopStatusActive = shop.StatusActive
	ShopStatusLocked = shop.StatusLocked

	DefaultThemeColor       = shop.DefaultThemeColor
	DefaultPublicThemeColor = shop.DefaultPublicThemeColor
	DefaultSettingsName     = shop.DefaultSettingsName

	DefaultProductTime   = catalog.DefaultProductTime
	DefaultProductRating = catalog.DefaultProductRating
	DefaultProductImage  = catalog.DefaultProductImage

	DefaultInviteDays = onboarding.DefaultInviteDays
	MinInviteDays     = onboarding.MinInviteDays
	MaxInviteDays     = onboarding.MaxInviteDays
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&PasswordReset{},
		&Shop{},
		&ShopUser{},
		&ShopSettings{},
		&Category{},
		&Product{},
		&Invite{},
	}
}
