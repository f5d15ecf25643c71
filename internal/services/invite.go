package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

const (
	msgInviteInvalid = "Invalid invite link."
	msgInviteUsed    = "This invite has already been used."
	msgInviteExpired = "This invite has expired."
)

type InviteConfig struct {
	PublicBaseURL string
	DefaultDays   int
	TrialDays     int
}

type CreateInviteInput struct {
	ShopName      string `json:"shop_name"`
	Email         string `json:"email"`
	ExpiresInDays int    `json:"expires_in_days"`
}

type InviteView struct {
	*types.Invite
	Link   string `json:"link"`
	Status string `json:"status"`
}

type InviteValidation struct {
	Valid  bool          `json:"valid"`
	Invite *types.Invite `json:"invite,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type RegisterShopInput struct {
	Token    string `json:"token"`
	ShopName string `json:"shop_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterShopResult struct {
	User *types.User `json:"user"`
	Shop *types.Shop `json:"shop"`
}

type InviteService interface {
	Create(ctx context.Context, in CreateInviteInput) (*InviteView, error)
	Validate(ctx context.Context, token string) (*InviteValidation, error)
	RegisterShop(ctx context.Context, in RegisterShopInput) (*RegisterShopResult, error)
	List(ctx context.Context) ([]*InviteView, error)
	Delete(ctx context.Context, inviteID uuid.UUID) error
}

type inviteService struct {
	db           *gorm.DB
	log          *logger.Logger
	inviteRepo   repos.InviteRepo
	userRepo     repos.UserRepo
	shopRepo     repos.ShopRepo
	shopUserRepo repos.ShopUserRepo
	settingsRepo repos.ShopSettingsRepo
	mailer       Mailer
	cfg          InviteConfig
	now          Clock
}

func NewInviteService(
	db *gorm.DB,
	log *logger.Logger,
	inviteRepo repos.InviteRepo,
	userRepo repos.UserRepo,
	shopRepo repos.ShopRepo,
	shopUserRepo repos.ShopUserRepo,
	settingsRepo repos.ShopSettingsRepo,
	mailer Mailer,
	cfg InviteConfig,
) InviteService {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = types.DefaultInviteDays
	}
	if cfg.TrialDays <= 0 {
		cfg.TrialDays = 7
	}
	return &inviteService{
		db:           db,
		log:          log.With("service", "InviteService"),
		inviteRepo:   inviteRepo,
		userRepo:     userRepo,
		shopRepo:     shopRepo,
		shopUserRepo: shopUserRepo,
		settingsRepo: settingsRepo,
		mailer:       mailer,
		cfg:          cfg,
		now:          systemClock,
	}
}

// ClampInviteDays applies the default for unset values and bounds the rest.
func ClampInviteDays(days, def int) int {
	if days <= 0 {
		days = def
	}
	if days < types.MinInviteDays {
		return types.MinInviteDays
	}
	if days > types.MaxInviteDays {
		return types.MaxInviteDays
	}
	return days
}

func (is *inviteService) link(token string) string {
	return fmt.Sprintf("%s/register?token=%s", trimBaseURL(is.cfg.PublicBaseURL), url.QueryEscape(token))
}

func (is *inviteService) view(inv *types.Invite, now time.Time) *InviteView {
	status := "ACTIVE"
	switch {
	case inv.IsUsed:
		status = "USED"
	case inv.ExpiredAt(now):
		status = "EXPIRED"
	}
	return &InviteView{Invite: inv, Link: is.link(inv.Token), Status: status}
}

func (is *inviteService) Create(ctx context.Context, in CreateInviteInput) (*InviteView, error) {
	token, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	now := is.now()
	days := ClampInviteDays(in.ExpiresInDays, is.cfg.DefaultDays)
	inv := &types.Invite{
		Token:     token,
		Email:     repos.NormalizeEmail(in.Email),
		ShopName:  strings.TrimSpace(in.ShopName),
		ExpiresAt: now.Add(time.Duration(days) * 24 * time.Hour),
	}
	if _, err := is.inviteRepo.Create(dbctx.Context{Ctx: ctx}, inv); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	out := is.view(inv, now)

	if inv.Email != "" && is.mailer != nil {
		name := inv.ShopName
		if name == "" {
			name = "your restaurant"
		}
		msg := Email{
			To:         inv.Email,
			Subject:    "You're invited to Scandine",
			Text:       fmt.Sprintf("Set up the digital menu for %s here (valid for %d days):\n\n%s\n", name, days, out.Link),
			Categories: []string{"invite"},
		}
		if err := is.mailer.Send(ctx, msg); err != nil {
			is.log.Warn("Invite email failed", "invite_id", inv.ID, "error", err)
		}
	}
	is.log.Info("Invite created", "invite_id", inv.ID, "days", days)
	return out, nil
}

func (is *inviteService) Validate(ctx context.Context, token string) (*InviteValidation, error) {
	return is.validate(dbctx.Context{Ctx: ctx}, token)
}

func (is *inviteService) validate(dbc dbctx.Context, token string) (*InviteValidation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return &InviteValidation{Error: msgInviteInvalid}, nil
	}
	inv, err := is.inviteRepo.GetByToken(dbc, token)
	if err != nil {
		return nil, fmt.Errorf("load invite: %w", err)
	}
	switch {
	case inv == nil:
		return &InviteValidation{Error: msgInviteInvalid}, nil
	case inv.IsUsed:
		return &InviteValidation{Error: msgInviteUsed}, nil
	case inv.ExpiredAt(is.now()):
		return &InviteValidation{Error: msgInviteExpired}, nil
	}
	return &InviteValidation{Valid: true, Invite: inv}, nil
}

func (is *inviteService) RegisterShop(ctx context.Context, in RegisterShopInput) (*RegisterShopResult, error) {
	if len(in.Password) < MinPasswordLength {
		return nil, apierr.BadRequest("weak_password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var result *RegisterShopResult
	err = is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		check, err := is.validate(dbc, in.Token)
		if err != nil {
			return err
		}
		if !check.Valid {
			return apierr.BadRequest("invalid_invite", check.Error)
		}
		inv := check.Invite

		email := strings.TrimSpace(in.Email)
		if email == "" {
			email = inv.Email
		}
		if email == "" {
			return apierr.BadRequest("missing_email", "Email is required")
		}
		shopName := strings.TrimSpace(in.ShopName)
		if shopName == "" {
			shopName = inv.ShopName
		}
		if shopName == "" {
			return apierr.BadRequest("missing_shop_name", "Shop name is required")
		}

		taken, err := is.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apierr.Conflict("email_taken", "An account with this email already exists.")
		}

		users, err := is.userRepo.Create(dbc, []*types.User{{
			Email:    email,
			Password: hash,
			Role:     types.RoleOwner,
		}})
		if err != nil {
			return fmt.Errorf("create owner: %w", err)
		}
		owner := users[0]

		slug, err := uniqueShopSlug(dbc, is.shopRepo, shopName)
		if err != nil {
			return err
		}
		now := is.now()
		trialEnds := now.Add(time.Duration(is.cfg.TrialDays) * 24 * time.Hour)
		s, err := is.shopRepo.Create(dbc, &types.Shop{
			Name:        shopName,
			Slug:        slug,
			Plan:        types.PlanPro,
			Status:      types.ShopStatusActive,
			TrialEndsAt: &trialEnds,
		})
		if err != nil {
			return fmt.Errorf("create shop: %w", err)
		}
		if _, err := is.shopUserRepo.Create(dbc, &types.ShopUser{ShopID: s.ID, UserID: owner.ID}); err != nil {
			return fmt.Errorf("link owner: %w", err)
		}
		if _, err := is.settingsRepo.Create(dbc, &types.ShopSettings{
			ShopID:     s.ID,
			Name:       shopName,
			ThemeColor: types.DefaultThemeColor,
		}); err != nil {
			return fmt.Errorf("create settings: %w", err)
		}

		ok, err := is.inviteRepo.MarkUsed(dbc, inv.ID, s.ID, now)
		if err != nil {
			return fmt.Errorf("consume invite: %w", err)
		}
		if !ok {
			return apierr.BadRequest("invalid_invite", msgInviteUsed)
		}
		result = &RegisterShopResult{User: owner, Shop: s}
		return nil
	})
	if err != nil {
		return nil, err
	}
	is.log.Info("Shop registered from invite", "shop_id", result.Shop.ID, "slug", result.Shop.Slug, "user_id", result.User.ID)
	return result, nil
}

func (is *inviteService) List(ctx context.Context) ([]*InviteView, error) {
	rows, err := is.inviteRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	now := is.now()
	out := make([]*InviteView, 0, len(rows))
	for _, inv := range rows {
		out = append(out, is.view(inv, now))
	}
	return out, nil
}

func (is *inviteService) Delete(ctx context.Context, inviteID uuid.UUID) error {
	ok, err := is.inviteRepo.Delete(dbctx.Context{Ctx: ctx}, inviteID)
	if err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	if !ok {
		return apierr.NotFound("invite_not_found", "invite not found")
	}
	return nil
}
