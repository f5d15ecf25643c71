package shop

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type ShopUserRepo interface {
	Create(dbc dbctx.Context, link *types.ShopUser) (*types.ShopUser, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.ShopUser, error)
	GetByShopIDs(dbc dbctx.Context, shopIDs []uuid.UUID) ([]*types.ShopUser, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.ShopUser, error)
	DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
}

type shopUserRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShopUserRepo(db *gorm.DB, baseLog *logger.Logger) ShopUserRepo {
	repoLog := baseLog.With("repo", "ShopUserRepo")
	return &shopUserRepo{db: db, log: repoLog}
}

func (r *shopUserRepo) Create(dbc dbctx.Context, link *types.ShopUser) (*types.ShopUser, error) {
	if err := dbc.Resolve(r.db).Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

// GetByUserID returns the user's shop membership, or nil, nil for users without one.
func (r *shopUserRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.ShopUser, error) {
	var link types.ShopUser
	err := dbc.Resolve(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByShopIDs preloads User so callers can show owner emails.
func (r *shopUserRepo) GetByShopIDs(dbc dbctx.Context, shopIDs []uuid.UUID) ([]*types.ShopUser, error) {
	var results []*types.ShopUser
	if len(shopIDs) == 0 {
		return results, nil
	}
	if err := dbc.Resolve(r.db).
		Preload("User").
		Where("shop_id IN ?", shopIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByUserIDs preloads Shop for the superadmin user list.
func (r *shopUserRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.ShopUser, error) {
	var results []*types.ShopUser
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Resolve(r.db).
		Preload("Shop").
		Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shopUserRepo) DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error {
	return dbc.Resolve(r.db).
		Where("shop_id = ?", shopID).
		Delete(&types.ShopUser{}).Error
}

func (r *shopUserRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("user_id IN ?", userIDs).
		Delete(&types.ShopUser{}).Error
}
