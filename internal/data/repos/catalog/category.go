package catalog

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

// CategoryRepo is scoped by shop on every call.
type CategoryRepo interface {
	Create(dbc dbctx.Context, category *types.Category) (*types.Category, error)
	GetByID(dbc dbctx.Context, shopID, categoryID uuid.UUID) (*types.Category, error)
	ListByShop(dbc dbctx.Context, shopID uuid.UUID) ([]*types.Category, error)
	NextSortOrder(dbc dbctx.Context, shopID uuid.UUID) (int, error)
	Update(dbc dbctx.Context, shopID uuid.UUID, category *types.Category) error
	SetSortOrder(dbc dbctx.Context, shopID, categoryID uuid.UUID, sortOrder int) (bool, error)
	Delete(dbc dbctx.Context, shopID, categoryID uuid.UUID) (bool, error)
	DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	repoLog := baseLog.With("repo", "CategoryRepo")
	return &categoryRepo{db: db, log: repoLog}
}

func (r *categoryRepo) Create(dbc dbctx.Context, category *types.Category) (*types.Category, error) {
	if err := dbc.Resolve(r.db).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, shopID, categoryID uuid.UUID) (*types.Category, error) {
	var c types.Category
	err := dbc.Resolve(r.db).
		Where("shop_id = ? AND id = ?", shopID, categoryID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) ListByShop(dbc dbctx.Context, shopID uuid.UUID) ([]*types.Category, error) {
	var results []*types.Category
	if err := dbc.Resolve(r.db).
		Where("shop_id = ?", shopID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *categoryRepo) NextSortOrder(dbc dbctx.Context, shopID uuid.UUID) (int, error) {
	var max sql.NullInt64
	if err := dbc.Resolve(r.db).
		Model(&types.Category{}).
		Where("shop_id = ?", shopID).
		Select("MAX(sort_order)").
		Row().
		Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *categoryRepo) Update(dbc dbctx.Context, shopID uuid.UUID, category *types.Category) error {
	return dbc.Resolve(r.db).
		Model(&types.Category{}).
		Where("shop_id = ? AND id = ?", shopID, category.ID).
		Updates(map[string]any{
			"name":       category.Name,
			"name_kh":    category.NameKh,
			"name_zh":    category.NameZh,
			"sort_order": category.SortOrder,
		}).Error
}

func (r *categoryRepo) SetSortOrder(dbc dbctx.Context, shopID, categoryID uuid.UUID, sortOrder int) (bool, error) {
	res := dbc.Resolve(r.db).
		Model(&types.Category{}).
		Where("shop_id = ? AND id = ?", shopID, categoryID).
		Update("sort_order", sortOrder)
	return res.RowsAffected > 0, res.Error
}

func (r *categoryRepo) Delete(dbc dbctx.Context, shopID, categoryID uuid.UUID) (bool, error) {
	res := dbc.Resolve(r.db).
		Where("shop_id = ? AND id = ?", shopID, categoryID).
		Delete(&types.Category{})
	return res.RowsAffected > 0, res.Error
}

func (r *categoryRepo) DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error {
	return dbc.Resolve(r.db).
		Where("shop_id = ?", shopID).
		Delete(&types.Category{}).Error
}
