package shop

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type ShopSettingsRepo interface {
	Create(dbc dbctx.Context, settings *types.ShopSettings) (*types.ShopSettings, error)
	GetByShopID(dbc dbctx.Context, shopID uuid.UUID) (*types.ShopSettings, error)
	Save(dbc dbctx.Context, settings *types.ShopSettings) error
	DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error
}

type shopSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShopSettingsRepo(db *gorm.DB, baseLog *logger.Logger) ShopSettingsRepo {
	repoLog := baseLog.With("repo", "ShopSettingsRepo")
	return &shopSettingsRepo{db: db, log: repoLog}
}

func (r *shopSettingsRepo) Create(dbc dbctx.Context, settings *types.ShopSettings) (*types.ShopSettings, error) {
	if err := dbc.Resolve(r.db).Create(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// GetByShopID returns nil, nil for shops that never saved settings.
func (r *shopSettingsRepo) GetByShopID(dbc dbctx.Context, shopID uuid.UUID) (*types.ShopSettings, error) {
	var s types.ShopSettings
	err := dbc.Resolve(r.db).Where("shop_id = ?", shopID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shopSettingsRepo) Save(dbc dbctx.Context, settings *types.ShopSettings) error {
	return dbc.Resolve(r.db).Save(settings).Error
}

func (r *shopSettingsRepo) DeleteByShopID(dbc dbctx.Context, shopID uuid.UUID) error {
	return dbc.Resolve(r.db).
		Where("shop_id = ?", shopID).
		Delete(&types.ShopSettings{}).Error
}
