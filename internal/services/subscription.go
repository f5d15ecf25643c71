package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type AccessReason string

const (
	AccessNotFound AccessReason = "NOT_FOUND"
	AccessLocked   AccessReason = "LOCKED"
	AccessActive   AccessReason = "ACTIVE"
)

type Access struct {
	Allowed bool         `json:"allowed"`
	Reason  AccessReason `json:"reason"`
	Plan    types.Plan   `json:"plan,omitempty"`
	Shop    *types.Shop  `json:"shop,omitempty"`
}

type SubscriptionService interface {
	CheckShopAccess(ctx context.Context, shopID uuid.UUID) (*Access, error)
	CanEdit(access *Access) bool
	SweepExpiredTrials(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	db       *gorm.DB
	log      *logger.Logger
	shopRepo repos.ShopRepo
	now      Clock
}

func NewSubscriptionService(db *gorm.DB, log *logger.Logger, shopRepo repos.ShopRepo) SubscriptionService {
	return &subscriptionService{
		db:       db,
		log:      log.With("service", "SubscriptionService"),
		shopRepo: shopRepo,
		now:      systemClock,
	}
}

// CheckShopAccess gates every owner request. A lapsed trial on a paid plan is
// downgraded to FREE here and persisted before the answer is returned.
func (ss *subscriptionService) CheckShopAccess(ctx context.Context, shopID uuid.UUID) (*Access, error) {
	dbc := dbctx.Context{Ctx: ctx}
	s, err := ss.shopRepo.GetByID(dbc, shopID)
	if err != nil {
		return nil, fmt.Errorf("load shop: %w", err)
	}
	if s == nil {
		return &Access{Reason: AccessNotFound}, nil
	}
	if s.Status == types.ShopStatusLocked {
		return &Access{Reason: AccessLocked, Shop: s}, nil
	}

	now := ss.now()
	if s.TrialExpiredAt(now) {
		changed, err := ss.shopRepo.DowngradeIfTrialExpired(dbc, s.ID, now)
		if err != nil {
			return nil, fmt.Errorf("downgrade expired trial: %w", err)
		}
		if changed {
			ss.log.Info("Trial expired; shop downgraded", "shop_id", s.ID, "from_plan", s.Plan)
		}
		s.Plan = types.PlanFree
	}
	return &Access{Allowed: true, Reason: AccessActive, Plan: s.Plan, Shop: s}, nil
}

// CanEdit is false for FREE shops: their dashboard is view-only.
func (ss *subscriptionService) CanEdit(access *Access) bool {
	return access != nil && access.Allowed && access.Plan.Paid()
}

func (ss *subscriptionService) SweepExpiredTrials(ctx context.Context) (int64, error) {
	n, err := ss.shopRepo.DowngradeExpiredTrials(dbctx.Context{Ctx: ctx}, ss.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired trials: %w", err)
	}
	if n > 0 {
		ss.log.Info("Expired trials downgraded", "count", n)
	}
	return n, nil
}
