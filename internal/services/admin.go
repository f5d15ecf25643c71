package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/gcp"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type AdminStats struct {
	Shops       repos.ShopStats   `json:"shops"`
	TotalShops  int64             `json:"total_shops"`
	PaidShops   int64             `json:"paid_shops"`
	ActiveShops int64             `json:"active_shops"`
	Invites     repos.InviteStats `json:"invites"`
	TotalUsers  int64             `json:"total_users"`
}

type ShopSummary struct {
	*types.Shop
	OwnerEmail    string `json:"owner_email"`
	ProductCount  int64  `json:"product_count"`
	TrialActive   bool   `json:"trial_active"`
	TrialDaysLeft int    `json:"trial_days_left"`
}

type ShopDetail struct {
	ShopSummary
	Settings   *types.ShopSettings `json:"settings,omitempty"`
	Categories []*types.Category   `json:"categories"`
	Products   []*types.Product    `json:"products"`
}

type UserSummary struct {
	*types.User
	Shop *types.Shop `json:"shop,omitempty"`
}

type AdminService interface {
	Stats(ctx context.Context) (*AdminStats, error)

	ListShops(ctx context.Context, filter repos.ShopListFilter) ([]*ShopSummary, error)
	GetShop(ctx context.Context, shopID uuid.UUID) (*ShopDetail, error)
	ToggleShopStatus(ctx context.Context, shopID uuid.UUID) (*types.Shop, error)
	UpdateShopPlan(ctx context.Context, shopID uuid.UUID, plan types.Plan) (*types.Shop, error)
	DeleteShop(ctx context.Context, shopID uuid.UUID) error
	ForceDeleteProduct(ctx context.Context, productID uuid.UUID) error

	ListUsers(ctx context.Context) ([]*UserSummary, error)
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
	IssuePasswordReset(ctx context.Context, userID uuid.UUID) (string, error)
}

type adminService struct {
	db                *gorm.DB
	log               *logger.Logger
	shopRepo          repos.ShopRepo
	shopUserRepo      repos.ShopUserRepo
	settingsRepo      repos.ShopSettingsRepo
	categoryRepo      repos.CategoryRepo
	productRepo       repos.ProductRepo
	userRepo          repos.UserRepo
	userTokenRepo     repos.UserTokenRepo
	passwordResetRepo repos.PasswordResetRepo
	inviteRepo        repos.InviteRepo
	auth              AuthService
	menu              MenuService
	media             media
	now               Clock
}

func NewAdminService(
	db *gorm.DB,
	log *logger.Logger,
	shopRepo repos.ShopRepo,
	shopUserRepo repos.ShopUserRepo,
	settingsRepo repos.ShopSettingsRepo,
	categoryRepo repos.CategoryRepo,
	productRepo repos.ProductRepo,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	passwordResetRepo repos.PasswordResetRepo,
	inviteRepo repos.InviteRepo,
	auth AuthService,
	menu MenuService,
	bucket gcp.BucketService,
) AdminService {
	serviceLog := log.With("service", "AdminService")
	return &adminService{
		db:                db,
		log:               serviceLog,
		shopRepo:          shopRepo,
		shopUserRepo:      shopUserRepo,
		settingsRepo:      settingsRepo,
		categoryRepo:      categoryRepo,
		productRepo:       productRepo,
		userRepo:          userRepo,
		userTokenRepo:     userTokenRepo,
		passwordResetRepo: passwordResetRepo,
		inviteRepo:        inviteRepo,
		auth:              auth,
		menu:              menu,
		media:             media{log: serviceLog, bucket: bucket},
		now:               systemClock,
	}
}

func (as *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	dbc := dbctx.Context{Ctx: ctx}
	now := as.now()
	shops, err := as.shopRepo.Stats(dbc, now)
	if err != nil {
		return nil, fmt.Errorf("shop stats: %w", err)
	}
	invites, err := as.inviteRepo.Stats(dbc, now)
	if err != nil {
		return nil, fmt.Errorf("invite stats: %w", err)
	}
	users, err := as.userRepo.Count(dbc)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return &AdminStats{
		Shops:       shops,
		TotalShops:  shops.Total,
		PaidShops:   shops.Pro + shops.Premium,
		ActiveShops: shops.Active,
		Invites:     invites,
		TotalUsers:  users,
	}, nil
}

// trialDaysLeft rounds up so a trial ending later today still shows one day.
func trialDaysLeft(s *types.Shop, now time.Time) (bool, int) {
	if s.TrialEndsAt == nil || s.Plan == types.PlanFree || !s.TrialEndsAt.After(now) {
		return false, 0
	}
	return true, int(math.Ceil(s.TrialEndsAt.Sub(now).Hours() / 24))
}

func (as *adminService) summaries(dbc dbctx.Context, shops []*types.Shop) ([]*ShopSummary, error) {
	ids := make([]uuid.UUID, 0, len(shops))
	for _, s := range shops {
		ids = append(ids, s.ID)
	}
	counts, err := as.productRepo.CountByShopIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	links, err := as.shopUserRepo.GetByShopIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load shop owners: %w", err)
	}
	owners := make(map[uuid.UUID]string, len(links))
	for _, l := range links {
		if l.User == nil {
			continue
		}
		if _, seen := owners[l.ShopID]; !seen {
			owners[l.ShopID] = l.User.Email
		}
	}

	now := as.now()
	out := make([]*ShopSummary, 0, len(shops))
	for _, s := range shops {
		active, left := trialDaysLeft(s, now)
		out = append(out, &ShopSummary{
			Shop:          s,
			OwnerEmail:    owners[s.ID],
			ProductCount:  counts[s.ID],
			TrialActive:   active,
			TrialDaysLeft: left,
		})
	}
	return out, nil
}

func (as *adminService) ListShops(ctx context.Context, filter repos.ShopListFilter) ([]*ShopSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	shops, err := as.shopRepo.List(dbc, filter)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return as.summaries(dbc, shops)
}

func (as *adminService) loadShop(dbc dbctx.Context, shopID uuid.UUID) (*types.Shop, error) {
	s, err := as.shopRepo.GetByID(dbc, shopID)
	if err != nil {
		return nil, fmt.Errorf("load shop: %w", err)
	}
	if s == nil {
		return nil, apierr.NotFound("shop_not_found", "shop not found")
	}
	return s, nil
}

func (as *adminService) GetShop(ctx context.Context, shopID uuid.UUID) (*ShopDetail, error) {
	dbc := dbctx.Context{Ctx: ctx}
	s, err := as.loadShop(dbc, shopID)
	if err != nil {
		return nil, err
	}
	sums, err := as.summaries(dbc, []*types.Shop{s})
	if err != nil {
		return nil, err
	}
	detail := &ShopDetail{ShopSummary: *sums[0]}

	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		st, err := as.settingsRepo.GetByShopID(gdbc, shopID)
		detail.Settings = st
		return err
	})
	g.Go(func() error {
		cats, err := as.categoryRepo.ListByShop(gdbc, shopID)
		detail.Categories = cats
		return err
	})
	g.Go(func() error {
		products, err := as.productRepo.ListByShop(gdbc, shopID, repos.ProductFilter{})
		detail.Products = products
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load shop detail: %w", err)
	}
	return detail, nil
}

// ToggleShopStatus flips ACTIVE and LOCKED. Locking is the kill switch for
// the owner dashboard.
func (as *adminService) ToggleShopStatus(ctx context.Context, shopID uuid.UUID) (*types.Shop, error) {
	dbc := dbctx.Context{Ctx: ctx}
	s, err := as.loadShop(dbc, shopID)
	if err != nil {
		return nil, err
	}
	next := types.ShopStatusLocked
	if s.Status == types.ShopStatusLocked {
		next = types.ShopStatusActive
	}
	if err := as.shopRepo.UpdateStatus(dbc, shopID, next); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.Status = next
	as.log.Info("Shop status changed", "shop_id", shopID, "status", next)
	return s, nil
}

// UpdateShopPlan sets the plan by hand, which also ends any running trial.
func (as *adminService) UpdateShopPlan(ctx context.Context, shopID uuid.UUID, plan types.Plan) (*types.Shop, error) {
	if !plan.Valid() {
		return nil, apierr.BadRequest("invalid_plan", fmt.Sprintf("unknown plan %q", plan))
	}
	dbc := dbctx.Context{Ctx: ctx}
	s, err := as.loadShop(dbc, shopID)
	if err != nil {
		return nil, err
	}
	if err := as.shopRepo.UpdatePlan(dbc, shopID, plan, nil); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	s.Plan, s.TrialEndsAt = plan, nil
	as.log.Info("Shop plan changed", "shop_id", shopID, "plan", plan)
	return s, nil
}

// DeleteShop removes the shop, its catalog and settings, and the owner
// accounts that belong to it. Stored media is removed after commit.
func (as *adminService) DeleteShop(ctx context.Context, shopID uuid.UUID) error {
	var slug string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := as.loadShop(dbc, shopID)
		if err != nil {
			return err
		}
		slug = s.Slug

		links, err := as.shopUserRepo.GetByShopIDs(dbc, []uuid.UUID{shopID})
		if err != nil {
			return fmt.Errorf("load shop owners: %w", err)
		}
		var ownerIDs []uuid.UUID
		for _, l := range links {
			if l.User != nil && l.User.IsSuperAdmin() {
				continue
			}
			ownerIDs = append(ownerIDs, l.UserID)
		}

		if err := as.productRepo.DeleteByShopID(dbc, shopID); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		if err := as.categoryRepo.DeleteByShopID(dbc, shopID); err != nil {
			return fmt.Errorf("delete categories: %w", err)
		}
		if err := as.settingsRepo.DeleteByShopID(dbc, shopID); err != nil {
			return fmt.Errorf("delete settings: %w", err)
		}
		if err := as.shopUserRepo.DeleteByShopID(dbc, shopID); err != nil {
			return fmt.Errorf("delete shop users: %w", err)
		}
		if len(ownerIDs) > 0 {
			if err := as.deleteUsers(dbc, ownerIDs); err != nil {
				return err
			}
		}
		if err := as.shopRepo.DeleteByID(dbc, shopID); err != nil {
			return fmt.Errorf("delete shop: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if as.menu != nil {
		as.menu.InvalidateSlug(ctx, slug)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return as.media.dropPrefix(gctx, gcp.BucketCategoryProduct, productKeyPrefix(shopID))
	})
	g.Go(func() error {
		return as.media.dropPrefix(gctx, gcp.BucketCategoryBranding, logoKeyPrefix(shopID))
	})
	if err := g.Wait(); err != nil {
		as.log.Warn("Shop media cleanup incomplete (ignored)", "shop_id", shopID, "error", err)
	}
	as.log.Info("Shop deleted", "shop_id", shopID, "slug", slug)
	return nil
}

func (as *adminService) deleteUsers(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if err := as.userTokenRepo.FullDeleteByUserIDs(dbc, userIDs); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := as.passwordResetRepo.DeleteByUserIDs(dbc, userIDs); err != nil {
		return fmt.Errorf("delete password resets: %w", err)
	}
	if err := as.shopUserRepo.DeleteByUserIDs(dbc, userIDs); err != nil {
		return fmt.Errorf("delete shop links: %w", err)
	}
	if err := as.userRepo.DeleteByIDs(dbc, userIDs); err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	return nil
}

// ForceDeleteProduct removes a product from any shop.
func (as *adminService) ForceDeleteProduct(ctx context.Context, productID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	p, err := as.productRepo.GetByIDUnscoped(dbc, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return apierr.NotFound("product_not_found", "product not found")
	}
	if _, err := as.productRepo.Delete(dbc, p.ShopID, p.ID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	as.media.dropOwned(ctx, gcp.BucketCategoryProduct, productKeyPrefix(p.ShopID), p.ImageKey)
	if as.menu != nil {
		as.menu.InvalidateShop(ctx, p.ShopID)
	}
	as.log.Info("Product force-deleted", "shop_id", p.ShopID, "product_id", p.ID)
	return nil
}

func (as *adminService) ListUsers(ctx context.Context) ([]*UserSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	users, err := as.userRepo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	links, err := as.shopUserRepo.GetByUserIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load shop links: %w", err)
	}
	shops := make(map[uuid.UUID]*types.Shop, len(links))
	for _, l := range links {
		if l.Shop != nil {
			shops[l.UserID] = l.Shop
		}
	}
	out := make([]*UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, &UserSummary{User: u, Shop: shops[u.ID]})
	}
	return out, nil
}

// DeleteUser removes an account and its sessions. The user's shop is kept.
func (as *adminService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return apierr.BadRequest("cannot_delete_self", "You cannot delete your own account")
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return apierr.NotFound("user_not_found", "user not found")
		}
		if err := as.deleteUsers(dbc, []uuid.UUID{userID}); err != nil {
			return err
		}
		as.log.Info("User deleted", "user_id", userID)
		return nil
	})
}

func (as *adminService) IssuePasswordReset(ctx context.Context, userID uuid.UUID) (string, error) {
	return as.auth.IssuePasswordReset(ctx, userID)
}
