package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     types.RoleOwner,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedShop(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string, plan types.Plan) *types.Shop {
	tb.Helper()
	s := &types.Shop{
		ID:     uuid.New(),
		Name:   "Shop " + slug,
		Slug:   slug,
		Plan:   plan,
		Status: types.ShopStatusActive,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed shop: %v", err)
	}
	return s
}

func SeedOwner(tb testing.TB, ctx context.Context, tx *gorm.DB, shopID uuid.UUID, email string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, email)
	if err := tx.WithContext(ctx).Create(&types.ShopUser{ShopID: shopID, UserID: u.ID}).Error; err != nil {
		tb.Fatalf("seed shop user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, shopID uuid.UUID, name string, sortOrder int) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:        uuid.New(),
		ShopID:    shopID,
		Name:      name,
		SortOrder: sortOrder,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, shopID uuid.UUID, categoryID *uuid.UUID, name string, price float64) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:         uuid.New(),
		ShopID:     shopID,
		CategoryID: categoryID,
		Name:       name,
		Price:      price,
		Time:       "15min",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedInvite(tb testing.TB, ctx context.Context, tx *gorm.DB, token string, expiresAt time.Time) *types.Invite {
	tb.Helper()
	inv := &types.Invite{
		ID:        uuid.New(),
		Token:     token,
		Email:     "owner@" + token + ".test",
		ShopName:  "Invited " + token,
		ExpiresAt: expiresAt,
	}
	if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
		tb.Fatalf("seed invite: %v", err)
	}
	return inv
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrFloat(v float64) *float64 { return &v }
