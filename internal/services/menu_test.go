package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/scandine-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
)

func newTestMenu(t *testing.T, env *testEnv, cache *memCache) MenuService {
	t.Helper()
	return NewMenuService(env.db, env.log, env.shops, env.settings, env.cats, env.products, cache, 0)
}

func TestGetMenuFallbacks(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestMenu(t, env, newMemCache())
	ctx := context.Background()

	_, err := svc.GetMenu(ctx, "missing", LangEN, "")
	requireAPIErr(t, err, http.StatusNotFound, "shop_not_found")

	shop := testutil.SeedShop(t, ctx, env.db, "bare", types.PlanFree)
	p := testutil.SeedProduct(t, ctx, env.db, shop.ID, nil, "Plain Rice", 1)
	// Blank out the seeded defaults to exercise the public fallbacks.
	require.NoError(t, env.db.Model(p).Updates(map[string]any{"time": "", "rating": nil}).Error)

	m, err := svc.GetMenu(ctx, "BARE", "xx", "")
	require.NoError(t, err)
	assert.Equal(t, LangEN, m.Lang)
	assert.Equal(t, shop.Name, m.Shop.Name)
	assert.Equal(t, types.DefaultPublicThemeColor, m.Shop.ThemeColor)
	assert.Empty(t, m.Shop.Socials)
	require.Len(t, m.Products, 1)
	assert.Equal(t, 5.0, m.Products[0].Rating)
	assert.Equal(t, "10-15 min", m.Products[0].Time)
	assert.Equal(t, "Uncategorized", m.Products[0].CategoryName)

	sections := m.ByCategory()
	require.Len(t, sections, 1)
	assert.Equal(t, "Uncategorized", sections[0].Category)
}

func TestGetMenuLocalizesAndFilters(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestMenu(t, env, newMemCache())
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	shop := testutil.SeedShop(t, ctx, env.db, "khmer-kitchen", types.PlanPro)
	_, err := env.settings.Create(dbc, &types.ShopSettings{
		ShopID:       shop.ID,
		Name:         "Khmer Kitchen",
		ThemeColor:   "#112233",
		Facebook:     "https://facebook.com/kk",
		ShowFacebook: true,
		Instagram:    "https://instagram.com/kk",
		ExtraLinks:   []types.SocialLink{{Label: "Order", URL: "https://kk.example", Show: true}},
	})
	require.NoError(t, err)

	soups := testutil.SeedCategory(t, ctx, env.db, shop.ID, "Soups", 1)
	require.NoError(t, env.db.Model(soups).Update("name_kh", "ស៊ុប").Error)
	drinks := testutil.SeedCategory(t, ctx, env.db, shop.ID, "Drinks", 0)
	amok := testutil.SeedProduct(t, ctx, env.db, shop.ID, &soups.ID, "Fish Amok", 6)
	require.NoError(t, env.db.Model(amok).Updates(map[string]any{"name_kh": "អាម៉ុកត្រី", "rating": 4.8}).Error)
	testutil.SeedProduct(t, ctx, env.db, shop.ID, &drinks.ID, "Iced Coffee", 2)

	m, err := svc.GetMenu(ctx, "khmer-kitchen", LangKH, "")
	require.NoError(t, err)
	assert.Equal(t, "Khmer Kitchen", m.Shop.Name)
	assert.Equal(t, "#112233", m.Shop.ThemeColor)
	require.Len(t, m.Shop.Socials, 2, "hidden networks are dropped")
	assert.Equal(t, "facebook", m.Shop.Socials[0].Network)
	assert.Equal(t, "Order", m.Shop.Socials[1].Label)

	require.Len(t, m.Categories, 2)
	assert.Equal(t, "Drinks", m.Categories[0].Name, "no Khmer name falls back to English")
	assert.Equal(t, "ស៊ុប", m.Categories[1].Name)
	assert.Equal(t, "ស្វែងរកអាហារដែលអ្នកចូលចិត្ត", m.Labels["search_placeholder"])
	assert.Equal(t, "All", m.Labels["all"])

	var amokView MenuProduct
	for _, p := range m.Products {
		if p.ID == amok.ID {
			amokView = p
		}
	}
	assert.Equal(t, "អាម៉ុកត្រី", amokView.Name)
	assert.Equal(t, "ស៊ុប", amokView.CategoryName)
	assert.Equal(t, 4.8, amokView.Rating)

	// Search matches the English name even when the menu is localized.
	m, err = svc.GetMenu(ctx, "khmer-kitchen", LangKH, "AMOK")
	require.NoError(t, err)
	require.Len(t, m.Products, 1)
	assert.Equal(t, amok.ID, m.Products[0].ID)
	assert.Equal(t, "AMOK", m.Query)

	m, err = svc.GetMenu(ctx, "khmer-kitchen", LangEN, "pizza")
	require.NoError(t, err)
	assert.Empty(t, m.Products)
}

func TestMenuCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	cache := newMemCache()
	svc := newTestMenu(t, env, cache)
	ctx := context.Background()

	shop := testutil.SeedShop(t, ctx, env.db, "cached", types.PlanPro)
	testutil.SeedProduct(t, ctx, env.db, shop.ID, nil, "Bread", 1)

	m, err := svc.GetMenu(ctx, "cached", LangEN, "")
	require.NoError(t, err)
	require.Len(t, m.Products, 1)
	assert.Equal(t, 1, cache.sets)

	// A write that bypasses invalidation is not visible until the entry drops.
	testutil.SeedProduct(t, ctx, env.db, shop.ID, nil, "Butter", 1)
	m, err = svc.GetMenu(ctx, "cached", LangEN, "")
	require.NoError(t, err)
	assert.Len(t, m.Products, 1)
	assert.Equal(t, 1, cache.sets)

	svc.InvalidateShop(ctx, shop.ID)
	m, err = svc.GetMenu(ctx, "cached", LangEN, "")
	require.NoError(t, err)
	assert.Len(t, m.Products, 2)
	assert.Equal(t, 2, cache.sets)
}

func TestMenuSeesCatalogWrites(t *testing.T) {
	env := newTestEnv(t)
	menu := newTestMenu(t, env, newMemCache())
	catalog := NewCatalogService(env.db, env.log, env.cats, env.products, nil, menu)
	ctx := context.Background()
	shop := testutil.SeedShop(t, ctx, env.db, "live", types.PlanPro)

	m, err := menu.GetMenu(ctx, "live", LangEN, "")
	require.NoError(t, err)
	assert.Empty(t, m.Products)

	_, err = catalog.CreateProduct(ctx, shop.ID, ProductInput{Name: "Noodles", Price: testutil.PtrFloat(3)})
	require.NoError(t, err)
	m, err = menu.GetMenu(ctx, "live", LangEN, "")
	require.NoError(t, err)
	assert.Len(t, m.Products, 1)
}
