package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/platform/rediscache"
)

const (
	menuFallbackRating   = 5.0
	menuFallbackTime     = "10-15 min"
	menuUncategorized    = "Uncategorized"
	defaultMenuCacheTTL  = 5 * time.Minute
	menuCacheKeyTemplate = "menu:%s:%s"
)

type MenuSocial struct {
	Network string `json:"network"`
	Label   string `json:"label"`
	URL     string `json:"url"`
}

type MenuShop struct {
	Name       string       `json:"name"`
	Slug       string       `json:"slug"`
	Address    string       `json:"address"`
	Phone      string       `json:"phone"`
	ThemeColor string       `json:"theme_color"`
	LogoURL    string       `json:"logo_url"`
	Socials    []MenuSocial `json:"socials"`
}

type MenuCategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MenuProduct struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        float64    `json:"price"`
	Rating       float64    `json:"rating"`
	Time         string     `json:"time"`
	ImageURL     string     `json:"image_url"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name"`
	IsPopular    bool       `json:"is_popular"`
}

// Menu is the public, localized view of one shop.
type Menu struct {
	Lang       string            `json:"lang"`
	Langs      []string          `json:"langs"`
	Query      string            `json:"query,omitempty"`
	Labels     map[string]string `json:"labels"`
	Shop       MenuShop          `json:"shop"`
	Categories []MenuCategory    `json:"categories"`
	Products   []MenuProduct     `json:"products"`
}

// ByCategory groups products under their category name in category order,
// with uncategorized products last.
func (m *Menu) ByCategory() []MenuSection {
	idx := map[string]int{}
	sections := make([]MenuSection, 0, len(m.Categories)+1)
	for _, c := range m.Categories {
		idx[c.ID.String()] = len(sections)
		sections = append(sections, MenuSection{Category: c.Name})
	}
	var loose []MenuProduct
	for _, p := range m.Products {
		if p.CategoryID != nil {
			if i, ok := idx[p.CategoryID.String()]; ok {
				sections[i].Products = append(sections[i].Products, p)
				continue
			}
		}
		loose = append(loose, p)
	}
	if len(loose) > 0 {
		sections = append(sections, MenuSection{Category: menuUncategorized, Products: loose})
	}
	out := sections[:0]
	for _, s := range sections {
		if len(s.Products) > 0 {
			out = append(out, s)
		}
	}
	return out
}

type MenuSection struct {
	Category string
	Products []MenuProduct
}

// cachedMenu keeps the English search name alongside the localized product.
type cachedMenu struct {
	Menu
	SearchNames []string `json:"search_names"`
}

type MenuService interface {
	GetMenu(ctx context.Context, slug, lang, query string) (*Menu, error)
	InvalidateShop(ctx context.Context, shopID uuid.UUID)
	InvalidateSlug(ctx context.Context, slug string)
}

type menuService struct {
	db           *gorm.DB
	log          *logger.Logger
	shopRepo     repos.ShopRepo
	settingsRepo repos.ShopSettingsRepo
	categoryRepo repos.CategoryRepo
	productRepo  repos.ProductRepo
	cache        rediscache.Cache
	ttl          time.Duration
}

func NewMenuService(
	db *gorm.DB,
	log *logger.Logger,
	shopRepo repos.ShopRepo,
	settingsRepo repos.ShopSettingsRepo,
	categoryRepo repos.CategoryRepo,
	productRepo repos.ProductRepo,
	cache rediscache.Cache,
	ttl time.Duration,
) MenuService {
	if cache == nil {
		cache = rediscache.Noop()
	}
	if ttl <= 0 {
		ttl = defaultMenuCacheTTL
	}
	return &menuService{
		db:           db,
		log:          log.With("service", "MenuService"),
		shopRepo:     shopRepo,
		settingsRepo: settingsRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		ttl:          ttl,
	}
}

func menuCacheKey(slug, lang string) string {
	return fmt.Sprintf(menuCacheKeyTemplate, slug, lang)
}

func (ms *menuService) GetMenu(ctx context.Context, slug, lang, query string) (*Menu, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, apierr.NotFound("shop_not_found", "Menu not found")
	}
	if _, ok := menuLabels[lang]; !ok {
		lang = LangEN
	}

	cm, err := ms.loadCached(ctx, slug, lang)
	if err != nil {
		return nil, err
	}
	menu := cm.Menu
	menu.Query = strings.TrimSpace(query)
	menu.Products = filterProducts(cm.Products, cm.SearchNames, menu.Query)
	return &menu, nil
}

func (ms *menuService) loadCached(ctx context.Context, slug, lang string) (*cachedMenu, error) {
	key := menuCacheKey(slug, lang)
	if raw, ok := ms.cache.Get(ctx, key); ok {
		var cm cachedMenu
		if err := json.Unmarshal(raw, &cm); err == nil {
			return &cm, nil
		}
		ms.log.Warn("Discarding undecodable menu cache entry", "key", key)
	}

	cm, err := ms.build(ctx, slug, lang)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(cm); err == nil {
		ms.cache.Set(ctx, key, raw, ms.ttl)
	}
	return cm, nil
}

func (ms *menuService) build(ctx context.Context, slug, lang string) (*cachedMenu, error) {
	dbc := dbctx.Context{Ctx: ctx}
	shop, err := ms.shopRepo.GetBySlug(dbc, slug)
	if err != nil {
		return nil, fmt.Errorf("load shop: %w", err)
	}
	if shop == nil {
		return nil, apierr.NotFound("shop_not_found", "Menu not found")
	}

	var (
		settings   *types.ShopSettings
		categories []*types.Category
		products   []*types.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		s, err := ms.settingsRepo.GetByShopID(gdbc, shop.ID)
		settings = s
		return err
	})
	g.Go(func() error {
		c, err := ms.categoryRepo.ListByShop(gdbc, shop.ID)
		categories = c
		return err
	})
	g.Go(func() error {
		p, err := ms.productRepo.ListByShop(gdbc, shop.ID, repos.ProductFilter{})
		products = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}

	cm := &cachedMenu{Menu: Menu{
		Lang:       lang,
		Langs:      SupportedLangs,
		Labels:     Labels(lang),
		Shop:       menuShop(shop, settings),
		Categories: make([]MenuCategory, 0, len(categories)),
		Products:   make([]MenuProduct, 0, len(products)),
	}}
	catNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		name := localized(lang, c.Name, c.NameKh, c.NameZh)
		catNames[c.ID] = name
		cm.Categories = append(cm.Categories, MenuCategory{ID: c.ID, Name: name})
	}
	for _, p := range products {
		mp := MenuProduct{
			ID:           p.ID,
			Name:         localized(lang, p.Name, p.NameKh, p.NameZh),
			Description:  p.Description,
			Price:        p.Price,
			Rating:       menuFallbackRating,
			Time:         strings.TrimSpace(p.Time),
			ImageURL:     p.ImageURL,
			CategoryID:   p.CategoryID,
			CategoryName: menuUncategorized,
			IsPopular:    p.IsPopular,
		}
		if p.Rating != nil && *p.Rating > 0 {
			mp.Rating = *p.Rating
		}
		if mp.Time == "" {
			mp.Time = menuFallbackTime
		}
		if p.CategoryID != nil {
			if name, ok := catNames[*p.CategoryID]; ok {
				mp.CategoryName = name
			}
		}
		cm.Products = append(cm.Products, mp)
		cm.SearchNames = append(cm.SearchNames, p.Name)
	}
	return cm, nil
}

func menuShop(shop *types.Shop, s *types.ShopSettings) MenuShop {
	out := MenuShop{
		Name:       shop.Name,
		Slug:       shop.Slug,
		ThemeColor: types.DefaultPublicThemeColor,
		Socials:    []MenuSocial{},
	}
	if s == nil {
		return out
	}
	if name := strings.TrimSpace(s.Name); name != "" {
		out.Name = name
	}
	if c := strings.TrimSpace(s.ThemeColor); c != "" {
		out.ThemeColor = c
	}
	out.Address = s.Address
	out.Phone = s.Phone
	out.LogoURL = s.LogoURL

	add := func(network, label, url string, show bool) {
		if show && strings.TrimSpace(url) != "" {
			out.Socials = append(out.Socials, MenuSocial{Network: network, Label: label, URL: url})
		}
	}
	add("facebook", "Facebook", s.Facebook, s.ShowFacebook)
	add("instagram", "Instagram", s.Instagram, s.ShowInstagram)
	add("telegram", "Telegram", s.Telegram, s.ShowTelegram)
	for _, l := range s.ExtraLinks {
		add("link", l.Label, l.URL, l.Show)
	}
	return out
}

// filterProducts matches the query case-insensitively against the localized
// and the English product name.
func filterProducts(products []MenuProduct, searchNames []string, query string) []MenuProduct {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	out := make([]MenuProduct, 0, len(products))
	for i, p := range products {
		en := ""
		if i < len(searchNames) {
			en = searchNames[i]
		}
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(en), q) {
			out = append(out, p)
		}
	}
	return out
}

// InvalidateShop drops every cached language of the shop's menu.
func (ms *menuService) InvalidateShop(ctx context.Context, shopID uuid.UUID) {
	shop, err := ms.shopRepo.GetByID(dbctx.Context{Ctx: ctx}, shopID)
	if err != nil {
		ms.log.Warn("Menu invalidation skipped", "shop_id", shopID, "error", err)
		return
	}
	if shop == nil {
		return
	}
	ms.InvalidateSlug(ctx, shop.Slug)
}

func (ms *menuService) InvalidateSlug(ctx context.Context, slug string) {
	keys := make([]string, 0, len(SupportedLangs))
	for _, lang := range SupportedLangs {
		keys = append(keys, menuCacheKey(slug, lang))
	}
	ms.cache.Delete(ctx, keys...)
}
