package catalog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type ProductFilter struct {
	// Search matches name, name_kh and name_zh case-insensitively.
	Search     string
	CategoryID *uuid.UUID
}

type ProductRepo interface {
	Create(dbc dbctx.Context, product *types.Product) (*types.Product, error)
	GetByID(dbc dbctx.Context, shopID, productID uuid.UUID) (*types.Product, error)
	GetByIDUnscoped(dbc dbctx.Context, productID uuid.UUID) (*types.Product, error)
	ListByShop(dbc dbctx.Context, shopID uuid.UUID, filter ProductFilter) ([]*types.Product, error)
	CountByCategory(dbc dbctx.Context, shopID, categoryID uuid.UUID) (int64, error)
	CountByShopIDs(dbc dbctx.Context, shopIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Save(dbc dbctx.Context, product *types.Product) error
	Delete(dbc dbctx.Context, shopID, productID uuid.UUID) (bool, error)
	DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (r *productRepo) Create(dbc dbctx.Context, product *types.Product) (*types.Product, error) {
	if err := dbc.Resolve(r.db).Omit("Category").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) GetByID(dbc dbctx.Context, shopID, productID uuid.UUID) (*types.Product, error) {
	return r.first(dbc.Resolve(r.db).Where("shop_id = ? AND id = ?", shopID, productID))
}

// GetByIDUnscoped is for superadmin moderation only.
func (r *productRepo) GetByIDUnscoped(dbc dbctx.Context, productID uuid.UUID) (*types.Product, error) {
	return r.first(dbc.Resolve(r.db).Where("id = ?", productID))
}

func (r *productRepo) first(q *gorm.DB) (*types.Product, error) {
	var p types.Product
	err := q.Preload("Category").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) ListByShop(dbc dbctx.Context, shopID uuid.UUID, filter ProductFilter) ([]*types.Product, error) {
	q := dbc.Resolve(r.db).
		Preload("Category").
		Where("shop_id = ?", shopID)
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(name_kh) LIKE ? OR LOWER(name_zh) LIKE ?)", like, like, like)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	var results []*types.Product
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productRepo) CountByCategory(dbc dbctx.Context, shopID, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Resolve(r.db).
		Model(&types.Product{}).
		Where("shop_id = ? AND category_id = ?", shopID, categoryID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) CountByShopIDs(dbc dbctx.Context, shopIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(shopIDs))
	if len(shopIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ShopID uuid.UUID
		N      int64
	}
	if err := dbc.Resolve(r.db).
		Model(&types.Product{}).
		Select("shop_id, COUNT(*) AS n").
		Where("shop_id IN ?", shopIDs).
		Group("shop_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ShopID] = row.N
	}
	return out, nil
}

func (r *productRepo) Save(dbc dbctx.Context, product *types.Product) error {
	return dbc.Resolve(r.db).Omit("Category").Save(product).Error
}

func (r *productRepo) Delete(dbc dbctx.Context, shopID, productID uuid.UUID) (bool, error) {
	res := dbc.Resolve(r.db).
		Where("shop_id = ? AND id = ?", shopID, productID).
		Delete(&types.Product{})
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error {
	return dbc.Resolve(r.db).
		Where("shop_id = ?", shopID).
		Delete(&types.Product{}).Error
}
