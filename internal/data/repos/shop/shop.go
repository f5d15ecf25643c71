package shop

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type ListFilter struct {
	Search string
	Status types.ShopStatus
	Plan   types.Plan
}

type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Locked   int64 `json:"locked"`
	Free     int64 `json:"free"`
	Pro      int64 `json:"pro"`
	Premium  int64 `json:"premium"`
	Trialing int64 `json:"trialing"`
}

type ShopRepo interface {
	Create(dbc dbctx.Context, shop *types.Shop) (*types.Shop, error)
	GetByID(dbc dbctx.Context, shopID uuid.UUID) (*types.Shop, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Shop, error)
	SlugExists(dbc dbctx.Context, slug string) (bool, error)
	List(dbc dbctx.Context, filter ListFilter) ([]*types.Shop, error)
	Stats(dbc dbctx.Context, now time.Time) (Stats, error)
	UpdateStatus(dbc dbctx.Context, shopID uuid.UUID, status types.ShopStatus) error
	UpdatePlan(dbc dbctx.Context, shopID uuid.UUID, plan types.Plan, trialEndsAt *time.Time) error
	DowngradeIfTrialExpired(dbc dbctx.Context, shopID uuid.UUID, now time.Time) (bool, error)
	DowngradeExpiredTrials(dbc dbctx.Context, now time.Time) (int64, error)
	DeleteByID(dbc dbctx.Context, shopID uuid.UUID) error
}

type shopRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShopRepo(db *gorm.DB, baseLog *logger.Logger) ShopRepo {
	repoLog := baseLog.With("repo", "ShopRepo")
	return &shopRepo{db: db, log: repoLog}
}

func (sr *shopRepo) Create(dbc dbctx.Context, shop *types.Shop) (*types.Shop, error) {
	if err := dbc.Resolve(sr.db).Create(shop).Error; err != nil {
		return nil, err
	}
	return shop, nil
}

// GetByID returns nil, nil when the shop does not exist.
func (sr *shopRepo) GetByID(dbc dbctx.Context, shopID uuid.UUID) (*types.Shop, error) {
	return sr.first(dbc, "id = ?", shopID)
}

func (sr *shopRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Shop, error) {
	return sr.first(dbc, "slug = ?", strings.TrimSpace(slug))
}

func (sr *shopRepo) first(dbc dbctx.Context, query string, args ...any) (*types.Shop, error) {
	var s types.Shop
	err := dbc.Resolve(sr.db).Where(query, args...).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (sr *shopRepo) SlugExists(dbc dbctx.Context, slug string) (bool, error) {
	var count int64
	if err := dbc.Resolve(sr.db).
		Model(&types.Shop{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *shopRepo) List(dbc dbctx.Context, filter ListFilter) ([]*types.Shop, error) {
	q := dbc.Resolve(sr.db).Model(&types.Shop{})
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Plan != "" {
		q = q.Where("plan = ?", filter.Plan)
	}
	var results []*types.Shop
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *shopRepo) Stats(dbc dbctx.Context, now time.Time) (Stats, error) {
	var st Stats
	type bucket struct {
		Label string
		N     int64
	}
	db := dbc.Resolve(sr.db)

	var byStatus []bucket
	if err := db.Model(&types.Shop{}).
		Select("status AS label, COUNT(*) AS n").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return st, err
	}
	for _, b := range byStatus {
		st.Total += b.N
		switch types.ShopStatus(b.Label) {
		case types.ShopStatusActive:
			st.Active = b.N
		case types.ShopStatusLocked:
			st.Locked = b.N
		}
	}

	var byPlan []bucket
	if err := db.Model(&types.Shop{}).
		Select("plan AS label, COUNT(*) AS n").
		Group("plan").
		Scan(&byPlan).Error; err != nil {
		return st, err
	}
	for _, b := range byPlan {
		switch types.Plan(b.Label) {
		case types.PlanFree:
			st.Free = b.N
		case types.PlanPro:
			st.Pro = b.N
		case types.PlanPremium:
			st.Premium = b.N
		}
	}

	if err := db.Model(&types.Shop{}).
		Where("plan <> ? AND trial_ends_at IS NOT NULL AND trial_ends_at >= ?", types.PlanFree, now).
		Count(&st.Trialing).Error; err != nil {
		return st, err
	}
	return st, nil
}

func (sr *shopRepo) UpdateStatus(dbc dbctx.Context, shopID uuid.UUID, status types.ShopStatus) error {
	return dbc.Resolve(sr.db).
		Model(&types.Shop{}).
		Where("id = ?", shopID).
		Update("status", status).Error
}

func (sr *shopRepo) UpdatePlan(dbc dbctx.Context, shopID uuid.UUID, plan types.Plan, trialEndsAt *time.Time) error {
	return dbc.Resolve(sr.db).
		Model(&types.Shop{}).
		Where("id = ?", shopID).
		Updates(map[string]any{
			"plan":          plan,
			"trial_ends_at": trialEndsAt,
		}).Error
}

const expiredTrialClause = "plan <> ? AND trial_ends_at IS NOT NULL AND trial_ends_at < ?"

// DowngradeIfTrialExpired moves one shop to FREE when its trial has lapsed.
// The predicate lives in the UPDATE so concurrent readers converge on one write.
func (sr *shopRepo) DowngradeIfTrialExpired(dbc dbctx.Context, shopID uuid.UUID, now time.Time) (bool, error) {
	res := dbc.Resolve(sr.db).
		Model(&types.Shop{}).
		Where("id = ?", shopID).
		Where(expiredTrialClause, types.PlanFree, now).
		Update("plan", types.PlanFree)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (sr *shopRepo) DowngradeExpiredTrials(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.Resolve(sr.db).
		Model(&types.Shop{}).
		Where(expiredTrialClause, types.PlanFree, now).
		Update("plan", types.PlanFree)
	return res.RowsAffected, res.Error
}

func (sr *shopRepo) DeleteByID(dbc dbctx.Context, shopID uuid.UUID) error {
	return dbc.Resolve(sr.db).
		Where("id = ?", shopID).
		Delete(&types.Shop{}).Error
}
