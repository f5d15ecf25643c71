package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/gcp"
	"github.com/yungbote/scandine-backend/internal/platform/imaging"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type CategoryInput struct {
	Name      string `json:"name"`
	NameKh    string `json:"name_kh"`
	NameZh    string `json:"name_zh"`
	SortOrder *int   `json:"sort_order"`
}

type ProductInput struct {
	Name        string     `json:"name"`
	NameKh      string     `json:"name_kh"`
	NameZh      string     `json:"name_zh"`
	Description string     `json:"description"`
	Price       *float64   `json:"price"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Time        string     `json:"time"`
	Rating      *float64   `json:"rating"`
	IsPopular   bool       `json:"is_popular"`
	// Image is the raw upload; nil keeps the current picture.
	Image []byte `json:"-"`
}

// MenuInvalidator drops cached public menus after a shop's data changes.
type MenuInvalidator interface {
	InvalidateShop(ctx context.Context, shopID uuid.UUID)
}

type CatalogService interface {
	ListCategories(ctx context.Context, shopID uuid.UUID) ([]*types.Category, error)
	CreateCategory(ctx context.Context, shopID uuid.UUID, in CategoryInput) (*types.Category, error)
	UpdateCategory(ctx context.Context, shopID, categoryID uuid.UUID, in CategoryInput) (*types.Category, error)
	ReorderCategories(ctx context.Context, shopID uuid.UUID, orderedIDs []uuid.UUID) error
	DeleteCategory(ctx context.Context, shopID, categoryID uuid.UUID) error

	ListProducts(ctx context.Context, shopID uuid.UUID, filter repos.ProductFilter) ([]*types.Product, error)
	GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*types.Product, error)
	CreateProduct(ctx context.Context, shopID uuid.UUID, in ProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, shopID, productID uuid.UUID, in ProductInput) (*types.Product, error)
	DeleteProduct(ctx context.Context, shopID, productID uuid.UUID) error
}

type catalogService struct {
	db           *gorm.DB
	log          *logger.Logger
	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
	media        media
	menu         MenuInvalidator
	now          Clock
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	categoryRepo repos.CategoryRepo,
	productRepo repos.ProductRepo,
	bucket gcp.BucketService,
	menu MenuInvalidator,
) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{
		db:           db,
		log:          serviceLog,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		media:        media{log: serviceLog, bucket: bucket},
		menu:         menu,
		now:          systemClock,
	}
}

func (cs *catalogService) invalidate(ctx context.Context, shopID uuid.UUID) {
	if cs.menu != nil {
		cs.menu.InvalidateShop(ctx, shopID)
	}
}

// ---- categories ----

func (cs *catalogService) ListCategories(ctx context.Context, shopID uuid.UUID) ([]*types.Category, error) {
	return cs.categoryRepo.ListByShop(dbctx.Context{Ctx: ctx}, shopID)
}

func (cs *catalogService) CreateCategory(ctx context.Context, shopID uuid.UUID, in CategoryInput) (*types.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.BadRequest("missing_name", "Category name is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else {
		next, err := cs.categoryRepo.NextSortOrder(dbc, shopID)
		if err != nil {
			return nil, fmt.Errorf("next sort order: %w", err)
		}
		order = next
	}
	c, err := cs.categoryRepo.Create(dbc, &types.Category{
		ShopID:    shopID,
		Name:      name,
		NameKh:    strings.TrimSpace(in.NameKh),
		NameZh:    strings.TrimSpace(in.NameZh),
		SortOrder: order,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	cs.invalidate(ctx, shopID)
	return c, nil
}

func (cs *catalogService) UpdateCategory(ctx context.Context, shopID, categoryID uuid.UUID, in CategoryInput) (*types.Category, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := cs.categoryRepo.GetByID(dbc, shopID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	if c == nil {
		return nil, apierr.NotFound("category_not_found", "category not found")
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	c.NameKh = strings.TrimSpace(in.NameKh)
	c.NameZh = strings.TrimSpace(in.NameZh)
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if err := cs.categoryRepo.Update(dbc, shopID, c); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	cs.invalidate(ctx, shopID)
	return c, nil
}

// ReorderCategories assigns sort_order by position. Every id must belong to the shop.
func (cs *catalogService) ReorderCategories(ctx context.Context, shopID uuid.UUID, orderedIDs []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return apierr.BadRequest("missing_order", "category order is required")
	}
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for i, id := range orderedIDs {
			ok, err := cs.categoryRepo.SetSortOrder(dbc, shopID, id, i)
			if err != nil {
				return fmt.Errorf("set sort order: %w", err)
			}
			if !ok {
				return apierr.NotFound("category_not_found", fmt.Sprintf("category %s not found", id))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	cs.invalidate(ctx, shopID)
	return nil
}

func (cs *catalogService) DeleteCategory(ctx context.Context, shopID, categoryID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	n, err := cs.productRepo.CountByCategory(dbc, shopID, categoryID)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return apierr.Conflict("category_in_use", fmt.Sprintf("Category still has %d product(s).", n))
	}
	ok, err := cs.categoryRepo.Delete(dbc, shopID, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !ok {
		return apierr.NotFound("category_not_found", "category not found")
	}
	cs.invalidate(ctx, shopID)
	return nil
}

// ---- products ----

func (cs *catalogService) ListProducts(ctx context.Context, shopID uuid.UUID, filter repos.ProductFilter) ([]*types.Product, error) {
	return cs.productRepo.ListByShop(dbctx.Context{Ctx: ctx}, shopID, filter)
}

func (cs *catalogService) GetProduct(ctx context.Context, shopID, productID uuid.UUID) (*types.Product, error) {
	p, err := cs.productRepo.GetByID(dbctx.Context{Ctx: ctx}, shopID, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	return p, nil
}

func (cs *catalogService) validateProduct(dbc dbctx.Context, shopID uuid.UUID, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apierr.BadRequest("missing_name", "Product name is required")
	}
	if in.Price == nil {
		return apierr.BadRequest("missing_price", "Price is required")
	}
	if math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) || *in.Price < 0 {
		return apierr.BadRequest("invalid_price", "Price must be a non-negative number")
	}
	if in.Rating != nil && (math.IsNaN(*in.Rating) || *in.Rating < 0 || *in.Rating > 5) {
		return apierr.BadRequest("invalid_rating", "Rating must be between 0 and 5")
	}
	if in.CategoryID != nil && *in.CategoryID != uuid.Nil {
		c, err := cs.categoryRepo.GetByID(dbc, shopID, *in.CategoryID)
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if c == nil {
			return apierr.BadRequest("invalid_category", "Category does not belong to this shop")
		}
	} else {
		in.CategoryID = nil
	}
	in.Time = strings.TrimSpace(in.Time)
	return nil
}

// uploadProductImage returns the new key and URL, or empty strings when no image was sent.
func (cs *catalogService) uploadProductImage(ctx context.Context, shopID uuid.UUID, name string, raw []byte) (string, string, error) {
	if raw == nil {
		return "", "", nil
	}
	processed, err := processImage(raw, imaging.ProductImage)
	if err != nil {
		return "", "", err
	}
	base := Slugify(name)
	if base == "" {
		base = "product"
	}
	key := fmt.Sprintf("%s%s-%d.jpg", productKeyPrefix(shopID), base, cs.now().UnixNano())
	url, err := cs.media.put(ctx, gcp.BucketCategoryProduct, key, processed)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

func (cs *catalogService) CreateProduct(ctx context.Context, shopID uuid.UUID, in ProductInput) (*types.Product, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if err := cs.validateProduct(dbc, shopID, &in); err != nil {
		return nil, err
	}

	p := &types.Product{
		ShopID:      shopID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		NameKh:      strings.TrimSpace(in.NameKh),
		NameZh:      strings.TrimSpace(in.NameZh),
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Rating:      in.Rating,
		Time:        in.Time,
		IsPopular:   in.IsPopular,
		ImageURL:    types.DefaultProductImage,
	}
	if p.Time == "" {
		p.Time = types.DefaultProductTime
	}
	if p.Rating == nil {
		r := types.DefaultProductRating
		p.Rating = &r
	}

	key, url, err := cs.uploadProductImage(ctx, shopID, in.Name, in.Image)
	if err != nil {
		return nil, err
	}
	if key != "" {
		p.ImageKey, p.ImageURL = key, url
	}

	if _, err := cs.productRepo.Create(dbc, p); err != nil {
		cs.media.dropOwned(ctx, gcp.BucketCategoryProduct, productKeyPrefix(shopID), key)
		return nil, fmt.Errorf("create product: %w", err)
	}
	cs.invalidate(ctx, shopID)
	cs.log.Info("Product created", "shop_id", shopID, "product_id", p.ID)
	return p, nil
}

func (cs *catalogService) UpdateProduct(ctx context.Context, shopID, productID uuid.UUID, in ProductInput) (*types.Product, error) {
	dbc := dbctx.Context{Ctx: ctx}
	p, err := cs.productRepo.GetByID(dbc, shopID, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("product_not_found", "product not found")
	}
	if err := cs.validateProduct(dbc, shopID, &in); err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.NameKh = strings.TrimSpace(in.NameKh)
	p.NameZh = strings.TrimSpace(in.NameZh)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = *in.Price
	p.CategoryID = in.CategoryID
	p.Category = nil
	p.IsPopular = in.IsPopular
	p.Time = in.Time
	if p.Time == "" {
		p.Time = types.DefaultProductTime
	}
	if in.Rating != nil {
		p.Rating = in.Rating
	}

	oldKey := p.ImageKey
	key, url, err := cs.uploadProductImage(ctx, shopID, in.Name, in.Image)
	if err != nil {
		return nil, err
	}
	if key != "" {
		p.ImageKey, p.ImageURL = key, url
	}

	if err := cs.productRepo.Save(dbc, p); err != nil {
		cs.media.dropOwned(ctx, gcp.BucketCategoryProduct, productKeyPrefix(shopID), key)
		return nil, fmt.Errorf("update product: %w", err)
	}
	if key != "" && oldKey != key {
		cs.media.dropOwned(ctx, gcp.BucketCategoryProduct, productKeyPrefix(shopID), oldKey)
	}
	cs.invalidate(ctx, shopID)
	return p, nil
}

func (cs *catalogService) DeleteProduct(ctx context.Context, shopID, productID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	p, err := cs.productRepo.GetByID(dbc, shopID, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return apierr.NotFound("product_not_found", "product not found")
	}
	if _, err := cs.productRepo.Delete(dbc, shopID, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	cs.media.dropOwned(ctx, gcp.BucketCategoryProduct, productKeyPrefix(shopID), p.ImageKey)
	cs.invalidate(ctx, shopID)
	return nil
}
