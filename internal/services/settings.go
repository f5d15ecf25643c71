package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/gcp"
	"github.com/yungbote/scandine-backend/internal/platform/imaging"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

const (
	maxExtraLinks    = 10
	initialsLogoSize = 300
)

var themeColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type SettingsInput struct {
	Name          string             `json:"name"`
	Address       string             `json:"address"`
	Phone         string             `json:"phone"`
	ThemeColor    string             `json:"theme_color"`
	Facebook      string             `json:"facebook"`
	ShowFacebook  bool               `json:"show_facebook"`
	Instagram     string             `json:"instagram"`
	ShowInstagram bool               `json:"show_instagram"`
	Telegram      string             `json:"telegram"`
	ShowTelegram  bool               `json:"show_telegram"`
	ExtraLinks    []types.SocialLink `json:"extra_links"`
	RemoveLogo    bool               `json:"remove_logo"`
	// Logo is the raw upload; nil keeps the current logo.
	Logo []byte `json:"-"`
}

type SettingsConfig struct {
	// LogoFontPath is a TTF used for initials badges; empty uses gg's bitmap face.
	LogoFontPath string
}

type SettingsService interface {
	Get(ctx context.Context, shopID uuid.UUID) (*types.ShopSettings, error)
	Update(ctx context.Context, shopID uuid.UUID, in SettingsInput) (*types.ShopSettings, error)
	GenerateInitialsLogo(ctx context.Context, shopID uuid.UUID) (*types.ShopSettings, error)
}

type settingsService struct {
	db           *gorm.DB
	log          *logger.Logger
	shopRepo     repos.ShopRepo
	settingsRepo repos.ShopSettingsRepo
	media        media
	menu         MenuInvalidator
	cfg          SettingsConfig
	now          Clock
}

func NewSettingsService(
	db *gorm.DB,
	log *logger.Logger,
	shopRepo repos.ShopRepo,
	settingsRepo repos.ShopSettingsRepo,
	bucket gcp.BucketService,
	menu MenuInvalidator,
	cfg SettingsConfig,
) SettingsService {
	serviceLog := log.With("service", "SettingsService")
	return &settingsService{
		db:           db,
		log:          serviceLog,
		shopRepo:     shopRepo,
		settingsRepo: settingsRepo,
		media:        media{log: serviceLog, bucket: bucket},
		menu:         menu,
		cfg:          cfg,
		now:          systemClock,
	}
}

func (ss *settingsService) invalidate(ctx context.Context, shopID uuid.UUID) {
	if ss.menu != nil {
		ss.menu.InvalidateShop(ctx, shopID)
	}
}

// Get returns the shop's settings, creating the default row on first access.
func (ss *settingsService) Get(ctx context.Context, shopID uuid.UUID) (*types.ShopSettings, error) {
	var out *types.ShopSettings
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := ss.getOrCreate(dbctx.Context{Ctx: ctx, Tx: tx}, shopID)
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ss *settingsService) getOrCreate(dbc dbctx.Context, shopID uuid.UUID) (*types.ShopSettings, error) {
	s, err := ss.settingsRepo.GetByShopID(dbc, shopID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if s != nil {
		return s, nil
	}
	shop, err := ss.shopRepo.GetByID(dbc, shopID)
	if err != nil {
		return nil, fmt.Errorf("load shop: %w", err)
	}
	if shop == nil {
		return nil, apierr.NotFound("shop_not_found", "shop not found")
	}
	s, err = ss.settingsRepo.Create(dbc, &types.ShopSettings{
		ShopID:     shopID,
		Name:       shop.Name,
		ThemeColor: types.DefaultThemeColor,
	})
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	return s, nil
}

func normalizeThemeColor(raw string) (string, error) {
	c := strings.TrimSpace(raw)
	if c == "" {
		return types.DefaultThemeColor, nil
	}
	if !themeColorRe.MatchString(c) {
		return "", apierr.BadRequest("invalid_theme_color", "Theme color must look like #RRGGBB")
	}
	return strings.ToLower(c), nil
}

func normalizeExtraLinks(in []types.SocialLink) ([]types.SocialLink, error) {
	out := make([]types.SocialLink, 0, len(in))
	for _, l := range in {
		l.Label = strings.TrimSpace(l.Label)
		l.URL = strings.TrimSpace(l.URL)
		if l.URL == "" {
			continue
		}
		u, err := url.Parse(l.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, apierr.BadRequest("invalid_link", fmt.Sprintf("Link %q must be an http(s) URL", l.URL))
		}
		if l.Label == "" {
			l.Label = u.Host
		}
		out = append(out, l)
	}
	if len(out) > maxExtraLinks {
		return nil, apierr.BadRequest("too_many_links", fmt.Sprintf("At most %d extra links are allowed", maxExtraLinks))
	}
	return out, nil
}

func (ss *settingsService) Update(ctx context.Context, shopID uuid.UUID, in SettingsInput) (*types.ShopSettings, error) {
	theme, err := normalizeThemeColor(in.ThemeColor)
	if err != nil {
		return nil, err
	}
	links, err := normalizeExtraLinks(in.ExtraLinks)
	if err != nil {
		return nil, err
	}

	var newKey, newURL string
	if in.Logo != nil {
		processed, err := processImage(in.Logo, imaging.Logo)
		if err != nil {
			return nil, err
		}
		newKey = fmt.Sprintf("%s%d.png", logoKeyPrefix(shopID), ss.now().UnixNano())
		if newURL, err = ss.media.put(ctx, gcp.BucketCategoryBranding, newKey, processed); err != nil {
			return nil, err
		}
	}

	var (
		out    *types.ShopSettings
		oldKey string
	)
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := ss.getOrCreate(dbc, shopID)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			shop, err := ss.shopRepo.GetByID(dbc, shopID)
			if err != nil {
				return fmt.Errorf("load shop: %w", err)
			}
			name = types.DefaultSettingsName
			if shop != nil {
				name = shop.Name
			}
		}
		s.Name = name
		s.Address = strings.TrimSpace(in.Address)
		s.Phone = strings.TrimSpace(in.Phone)
		s.ThemeColor = theme
		s.Facebook = strings.TrimSpace(in.Facebook)
		s.ShowFacebook = in.ShowFacebook
		s.Instagram = strings.TrimSpace(in.Instagram)
		s.ShowInstagram = in.ShowInstagram
		s.Telegram = strings.TrimSpace(in.Telegram)
		s.ShowTelegram = in.ShowTelegram
		s.ExtraLinks = links

		switch {
		case newKey != "":
			oldKey = s.LogoKey
			s.LogoKey, s.LogoURL = newKey, newURL
		case in.RemoveLogo:
			oldKey = s.LogoKey
			s.LogoKey, s.LogoURL = "", ""
		}
		if err := ss.settingsRepo.Save(dbc, s); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		ss.media.dropOwned(ctx, gcp.BucketCategoryBranding, logoKeyPrefix(shopID), newKey)
		return nil, err
	}
	if oldKey != out.LogoKey {
		ss.media.dropOwned(ctx, gcp.BucketCategoryBranding, logoKeyPrefix(shopID), oldKey)
	}
	ss.invalidate(ctx, shopID)
	return out, nil
}

// GenerateInitialsLogo renders a round badge in the theme color for shops
// without a logo. Shops that already have one are returned untouched.
func (ss *settingsService) GenerateInitialsLogo(ctx context.Context, shopID uuid.UUID) (*types.ShopSettings, error) {
	s, err := ss.Get(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if s.LogoURL != "" {
		return s, nil
	}

	bg, err := imaging.ParseHexColor(s.ThemeColor)
	if err != nil {
		bg, _ = imaging.ParseHexColor(types.DefaultThemeColor)
	}
	var face font.Face
	if p := strings.TrimSpace(ss.cfg.LogoFontPath); p != "" {
		if face, err = imaging.LoadFontFace(p, initialsLogoSize*0.4); err != nil {
			ss.log.Warn("Logo font unavailable; using default face", "path", p, "error", err)
			face = nil
		}
	}
	png, err := imaging.InitialsBadge(s.Name, bg, initialsLogoSize, face)
	if err != nil {
		return nil, fmt.Errorf("render initials: %w", err)
	}
	key := fmt.Sprintf("%sinitials-%d.png", logoKeyPrefix(shopID), ss.now().UnixNano())
	logoURL, err := ss.media.put(ctx, gcp.BucketCategoryBranding, key, png)
	if err != nil {
		return nil, err
	}
	s.LogoKey, s.LogoURL = key, logoURL
	if err := ss.settingsRepo.Save(dbctx.Context{Ctx: ctx}, s); err != nil {
		ss.media.dropOwned(ctx, gcp.BucketCategoryBranding, logoKeyPrefix(shopID), key)
		return nil, fmt.Errorf("save settings: %w", err)
	}
	ss.invalidate(ctx, shopID)
	return s, nil
}
