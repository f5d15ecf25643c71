package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/services"
)

const (
	DemoShopSlug      = "demo"
	DemoOwnerEmail    = "admin@gmail.com"
	DemoOwnerPassword = "admin1234"
)

type demoProduct struct {
	name     string
	price    float64
	rating   float64
	time     string
	image    string
	category string
}

var demoCategories = []string{"Salads", "Hot sale", "Popularity", "Burgers"}

var demoProducts = []demoProduct{
	{"Avocado Salad", 12.00, 4.5, "20min", "https://images.unsplash.com/photo-1512621776951-a57141f2eefd?auto=format&fit=crop&w=500&q=80", "Salads"},
	{"Fruits Salad", 11.00, 4.5, "15min", "https://images.unsplash.com/photo-1519996529931-28324d1a6305?auto=format&fit=crop&w=500&q=80", "Salads"},
	{"Greek Salad", 13.50, 4.7, "25min", "https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?auto=format&fit=crop&w=500&q=80", "Salads"},
	{"Cheeseburger", 14.00, 4.8, "20min", "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?auto=format&fit=crop&w=500&q=80", "Burgers"},
	{"Chicken Burger", 12.50, 4.6, "25min", "https://images.unsplash.com/photo-1615297348774-61d090d5ce20?auto=format&fit=crop&w=500&q=80", "Burgers"},
	{"Spicy Pasta", 16.00, 4.9, "30min", "https://images.unsplash.com/photo-1621996346565-e3dbc646d9a9?auto=format&fit=crop&w=500&q=80", "Hot sale"},
	{"Grilled Salmon", 22.00, 4.8, "40min", "https://images.unsplash.com/photo-1467003909585-2f8a7270028d?auto=format&fit=crop&w=500&q=80", "Hot sale"},
	{"Margherita Pizza", 15.00, 4.7, "25min", "https://images.unsplash.com/photo-1574071318508-1cdbab80d002?auto=format&fit=crop&w=500&q=80", "Popularity"},
	{"Sushi Platter", 24.00, 4.8, "35min", "https://images.unsplash.com/photo-1579871494447-9811cf80d66c?auto=format&fit=crop&w=500&q=80", "Popularity"},
}

type SeedResult struct {
	Shop       *types.Shop
	Owner      *types.User
	Categories int
	Products   int
}

// SeedDemo upserts the demo owner and shop, then replaces the shop's catalog.
// Running it twice leaves the same data behind.
func SeedDemo(ctx context.Context, b *Base) (*SeedResult, error) {
	log := b.Log.With("component", "Seed")
	r := wireRepos(b.DB, log)
	res := &SeedResult{}

	err := b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		owner, err := r.User.GetByEmail(dbc, DemoOwnerEmail)
		if err != nil {
			return err
		}
		if owner == nil {
			hash, err := services.HashPassword(DemoOwnerPassword)
			if err != nil {
				return err
			}
			created, err := r.User.Create(dbc, []*types.User{{Email: DemoOwnerEmail, Password: hash, Role: types.RoleOwner}})
			if err != nil {
				return fmt.Errorf("create demo owner: %w", err)
			}
			owner = created[0]
		}
		res.Owner = owner

		shop, err := r.Shop.GetBySlug(dbc, DemoShopSlug)
		if err != nil {
			return err
		}
		if shop == nil {
			shop, err = r.Shop.Create(dbc, &types.Shop{
				Name:   "Scandine Demo",
				Slug:   DemoShopSlug,
				Plan:   types.PlanPremium,
				Status: types.ShopStatusActive,
			})
			if err != nil {
				return fmt.Errorf("create demo shop: %w", err)
			}
			if _, err := r.ShopSettings.Create(dbc, &types.ShopSettings{
				ShopID:     shop.ID,
				Name:       shop.Name,
				ThemeColor: types.DefaultThemeColor,
			}); err != nil {
				return fmt.Errorf("create demo settings: %w", err)
			}
		}
		res.Shop = shop

		link, err := r.ShopUser.GetByUserID(dbc, owner.ID)
		if err != nil {
			return err
		}
		if link == nil {
			if _, err := r.ShopUser.Create(dbc, &types.ShopUser{ShopID: shop.ID, UserID: owner.ID}); err != nil {
				return fmt.Errorf("link demo owner: %w", err)
			}
		}

		if err := r.Product.DeleteByShopID(dbc, shop.ID); err != nil {
			return err
		}
		if err := r.Category.DeleteByShopID(dbc, shop.ID); err != nil {
			return err
		}
		catIDs, err := seedCategories(dbc, r, shop)
		if err != nil {
			return err
		}
		res.Categories = len(catIDs)
		for _, p := range demoProducts {
			catID := catIDs[p.category]
			rating := p.rating
			if _, err := r.Product.Create(dbc, &types.Product{
				ShopID:     shop.ID,
				CategoryID: &catID,
				Name:       p.name,
				Price:      p.price,
				Rating:     &rating,
				Time:       p.time,
				ImageURL:   p.image,
			}); err != nil {
				return fmt.Errorf("create product %q: %w", p.name, err)
			}
			res.Products++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Demo data seeded", "shop", res.Shop.Slug, "owner", res.Owner.Email, "products", res.Products)
	return res, nil
}

func seedCategories(dbc dbctx.Context, r Repos, shop *types.Shop) (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(demoCategories))
	for i, name := range demoCategories {
		c, err := r.Category.Create(dbc, &types.Category{ShopID: shop.ID, Name: name, SortOrder: i + 1})
		if err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		out[name] = c.ID
	}
	return out, nil
}

// CreateSuperAdmin creates a superadmin or promotes an existing account and
// resets its password.
func CreateSuperAdmin(ctx context.Context, b *Base, email, password string) (*types.User, error) {
	email = repos.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < services.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", services.MinPasswordLength)
	}
	hash, err := services.HashPassword(password)
	if err != nil {
		return nil, err
	}

	r := wireRepos(b.DB, b.Log)
	var out *types.User
	err = b.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := r.User.GetByEmail(dbc, email)
		if err != nil {
			return err
		}
		if existing == nil {
			created, err := r.User.Create(dbc, []*types.User{{Email: email, Password: hash, Role: types.RoleSuperAdmin}})
			if err != nil {
				return err
			}
			out = created[0]
			return nil
		}
		if err := r.User.UpdatePassword(dbc, existing.ID, hash); err != nil {
			return err
		}
		if err := r.User.UpdateRole(dbc, existing.ID, types.RoleSuperAdmin); err != nil {
			return err
		}
		existing.Role = types.RoleSuperAdmin
		out = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create superadmin: %w", err)
	}
	b.Log.Info("Superadmin ready", "email", out.Email)
	return out, nil
}

// SweepTrials downgrades every lapsed trial once.
func SweepTrials(ctx context.Context, b *Base) (int64, error) {
	r := wireRepos(b.DB, b.Log)
	return services.NewSubscriptionService(b.DB, b.Log, r.Shop).SweepExpiredTrials(ctx)
}
