package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/gcp"
)

func newTestCatalog(t *testing.T, env *testEnv, bucket gcp.BucketService) (*catalogService, *recordingInvalidator) {
	t.Helper()
	inv := &recordingInvalidator{}
	svc := NewCatalogService(env.db, env.log, env.cats, env.products, bucket, inv).(*catalogService)
	tick := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, inv
}

func TestCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc, inv := newTestCatalog(t, env, nil)
	ctx := context.Background()
	shop := testutil.SeedShop(t, ctx, env.db, "cats", types.PlanPro)
	other := testutil.SeedShop(t, ctx, env.db, "other", types.PlanPro)

	_, err := svc.CreateCategory(ctx, shop.ID, CategoryInput{Name: "  "})
	requireAPIErr(t, err, http.StatusBadRequest, "missing_name")

	drinks, err := svc.CreateCategory(ctx, shop.ID, CategoryInput{Name: "Drinks", NameKh: "ភេសជ្ជៈ"})
	require.NoError(t, err)
	assert.Equal(t, 0, drinks.SortOrder)
	mains, err := svc.CreateCategory(ctx, shop.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	assert.Equal(t, 1, mains.SortOrder)
	foreign, err := svc.CreateCategory(ctx, other.ID, CategoryInput{Name: "Foreign"})
	require.NoError(t, err)

	require.NoError(t, svc.ReorderCategories(ctx, shop.ID, []uuid.UUID{mains.ID, drinks.ID}))
	list, err := svc.ListCategories(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mains", list[0].Name)
	assert.Equal(t, "Drinks", list[1].Name)

	err = svc.ReorderCategories(ctx, shop.ID, []uuid.UUID{drinks.ID, foreign.ID})
	requireAPIErr(t, err, http.StatusNotFound, "category_not_found")
	list, err = svc.ListCategories(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mains", list[0].Name, "failed reorder is rolled back")

	_, err = svc.UpdateCategory(ctx, shop.ID, foreign.ID, CategoryInput{Name: "Hijack"})
	requireAPIErr(t, err, http.StatusNotFound, "category_not_found")

	updated, err := svc.UpdateCategory(ctx, shop.ID, drinks.ID, CategoryInput{Name: "Beverages", NameZh: "饮料"})
	require.NoError(t, err)
	assert.Equal(t, "Beverages", updated.Name)
	assert.Equal(t, "饮料", updated.NameZh)

	_, err = svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Tea", Price: testutil.PtrFloat(1), CategoryID: &drinks.ID})
	require.NoError(t, err)
	requireAPIErr(t, svc.DeleteCategory(ctx, shop.ID, drinks.ID), http.StatusConflict, "category_in_use")
	require.NoError(t, svc.DeleteCategory(ctx, shop.ID, mains.ID))
	requireAPIErr(t, svc.DeleteCategory(ctx, shop.ID, mains.ID), http.StatusNotFound, "category_not_found")

	assert.Positive(t, inv.calls())
}

func TestCreateProductDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestCatalog(t, env, nil)
	ctx := context.Background()
	shop := testutil.SeedShop(t, ctx, env.db, "prod", types.PlanPro)
	other := testutil.SeedShop(t, ctx, env.db, "prod-other", types.PlanPro)
	foreignCat := testutil.SeedCategory(t, ctx, env.db, other.ID, "Foreign", 0)

	_, err := svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "", Price: testutil.PtrFloat(1)})
	requireAPIErr(t, err, http.StatusBadRequest, "missing_name")
	_, err = svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Soup"})
	requireAPIErr(t, err, http.StatusBadRequest, "missing_price")
	_, err = svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Soup", Price: testutil.PtrFloat(-1)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_price")
	_, err = svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Soup", Price: testutil.PtrFloat(1), Rating: testutil.PtrFloat(7)})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_rating")
	_, err = svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Soup", Price: testutil.PtrFloat(1), CategoryID: &foreignCat.ID})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_category")

	p, err := svc.CreateProduct(ctx, shop.ID, ProductInput{Name: " Soup ", Price: testutil.PtrFloat(3.5)})
	require.NoError(t, err)
	assert.Equal(t, "Soup", p.Name)
	assert.Equal(t, types.DefaultProductTime, p.Time)
	require.NotNil(t, p.Rating)
	assert.Equal(t, types.DefaultProductRating, *p.Rating)
	assert.Equal(t, types.DefaultProductImage, p.ImageURL)
	assert.Empty(t, p.ImageKey)

	_, err = svc.GetProduct(ctx, other.ID, p.ID)
	requireAPIErr(t, err, http.StatusNotFound, "product_not_found")

	_, err = svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Pic", Price: testutil.PtrFloat(1), Image: pngBytes(t, 8, 8)})
	requireAPIErr(t, err, http.StatusServiceUnavailable, "storage_disabled")
}

func TestProductImageLifecycle(t *testing.T) {
	env := newTestEnv(t)
	bucket := newFakeBucket()
	svc, _ := newTestCatalog(t, env, bucket)
	ctx := context.Background()
	shop := testutil.SeedShop(t, ctx, env.db, "imgs", types.PlanPro)

	_, err := svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Bad", Price: testutil.PtrFloat(1), Image: []byte("not an image")})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_image")
	assert.Zero(t, bucket.count())

	p, err := svc.CreateProduct(ctx, shop.ID, ProductInput{Name: "Fried Rice", Price: testutil.PtrFloat(4), Image: pngBytes(t, 40, 20)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ImageKey, "products/"+shop.ID.String()+"/fried-rice-"))
	assert.True(t, strings.HasSuffix(p.ImageKey, ".jpg"))
	assert.Equal(t, "https://cdn.test/product/"+p.ImageKey, p.ImageURL)
	assert.True(t, bucket.has(gcp.BucketCategoryProduct, p.ImageKey))
	firstKey := p.ImageKey

	_, err = svc.UpdateProduct(ctx, shop.ID, p.ID, ProductInput{Name: "Fried Rice"})
	requireAPIErr(t, err, http.StatusBadRequest, "missing_price")

	// Update without an image keeps the picture.
	p, err = svc.UpdateProduct(ctx, shop.ID, p.ID, ProductInput{Name: "Fried Rice", Price: testutil.PtrFloat(5)})
	require.NoError(t, err)
	assert.Equal(t, firstKey, p.ImageKey)

	p, err = svc.UpdateProduct(ctx, shop.ID, p.ID, ProductInput{Name: "Fried Rice", Price: testutil.PtrFloat(5), Image: pngBytes(t, 10, 10)})
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, p.ImageKey)
	assert.False(t, bucket.has(gcp.BucketCategoryProduct, firstKey))
	assert.True(t, bucket.has(gcp.BucketCategoryProduct, p.ImageKey))

	other := testutil.SeedShop(t, ctx, env.db, "imgs-other", types.PlanPro)
	requireAPIErr(t, svc.DeleteProduct(ctx, other.ID, p.ID), http.StatusNotFound, "product_not_found")

	require.NoError(t, svc.DeleteProduct(ctx, shop.ID, p.ID))
	assert.Zero(t, bucket.count())

	list, err := svc.ListProducts(ctx, shop.ID, repos.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
