package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/ctxutil"
	"github.com/yungbote/scandine-backend/internal/platform/imaging"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/services"
)

type formFileField struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFileField) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func serve(r *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

// ownerRouter stands in for the tenant middleware by pinning the caller's shop.
func ownerRouter(shopID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		rd := &ctxutil.RequestData{UserID: uuid.New(), ShopID: shopID, Role: string(types.RoleOwner)}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	})
	return r
}

type captureCatalog struct {
	services.CatalogService
	productID uuid.UUID
	in        *services.ProductInput
}

func (cc *captureCatalog) CreateProduct(_ context.Context, _ uuid.UUID, in services.ProductInput) (*types.Product, error) {
	cc.in = &in
	return &types.Product{Name: in.Name}, nil
}

func (cc *captureCatalog) UpdateProduct(_ context.Context, _, productID uuid.UUID, in services.ProductInput) (*types.Product, error) {
	cc.productID = productID
	cc.in = &in
	return &types.Product{Name: in.Name}, nil
}

func newCatalogRouter() (*gin.Engine, *captureCatalog) {
	cc := &captureCatalog{}
	h := NewCatalogHandler(logger.Nop(), cc)
	r := ownerRouter(uuid.New())
	r.POST("/api/owner/products", h.CreateProduct)
	r.PUT("/api/owner/products/:id", h.UpdateProduct)
	return r, cc
}

func TestCreateProductFromMultipartForm(t *testing.T) {
	r, cc := newCatalogRouter()
	catID := uuid.New()
	img := []byte("\x89PNG fake bytes")

	body, ct := multipartBody(t, map[string]string{
		"name":        "Fish Amok",
		"name_kh":     "អាម៉ុកត្រី",
		"price":       " 6.50 ",
		"rating":      "4.5",
		"category_id": catID.String(),
		"is_popular":  "on",
	}, formFileField{field: "image", name: "amok.png", data: img})

	rec := serve(r, http.MethodPost, "/api/owner/products", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, cc.in)
	assert.Equal(t, "Fish Amok", cc.in.Name)
	assert.Equal(t, "អាម៉ុកត្រី", cc.in.NameKh)
	require.NotNil(t, cc.in.Price)
	assert.Equal(t, 6.5, *cc.in.Price)
	require.NotNil(t, cc.in.Rating)
	assert.Equal(t, 4.5, *cc.in.Rating)
	require.NotNil(t, cc.in.CategoryID)
	assert.Equal(t, catID, *cc.in.CategoryID)
	assert.True(t, cc.in.IsPopular, "a ticked checkbox posts \"on\"")
	assert.Equal(t, img, cc.in.Image)
}

func TestProductFormLeavesBlankPriceUnset(t *testing.T) {
	r, cc := newCatalogRouter()

	body, ct := multipartBody(t, map[string]string{"name": "Soup", "price": "  "})
	rec := serve(r, http.MethodPost, "/api/owner/products", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, cc.in)
	assert.Nil(t, cc.in.Price)
	assert.Nil(t, cc.in.Image)
	assert.False(t, cc.in.IsPopular)

	body, ct = multipartBody(t, map[string]string{"name": "Soup", "price": "cheap"})
	rec = serve(r, http.MethodPost, "/api/owner/products", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_price", errCode(t, rec))

	body, ct = multipartBody(t, map[string]string{"name": "Soup", "price": "1", "category_id": "nope"})
	rec = serve(r, http.MethodPost, "/api/owner/products", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_category_id", errCode(t, rec))
}

func TestUpdateProductFromMultipartForm(t *testing.T) {
	r, cc := newCatalogRouter()
	id := uuid.New()

	body, ct := multipartBody(t, map[string]string{"name": "Fried Rice", "price": "5"},
		formFileField{field: "image", name: "rice.jpg", data: []byte("jpeg-ish")})
	rec := serve(r, http.MethodPut, "/api/owner/products/"+id.String(), body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, id, cc.productID)
	require.NotNil(t, cc.in.Price)
	assert.Equal(t, 5.0, *cc.in.Price)
	assert.Equal(t, []byte("jpeg-ish"), cc.in.Image)

	rec = serve(r, http.MethodPut, "/api/owner/products/not-a-uuid", strings.NewReader(`{"name":"x","price":1}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", errCode(t, rec))
}

func TestProductJSONBody(t *testing.T) {
	r, cc := newCatalogRouter()

	rec := serve(r, http.MethodPost, "/api/owner/products", strings.NewReader(`{"name":"Tea"}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, cc.in.Price, "an absent price stays absent")

	rec = serve(r, http.MethodPost, "/api/owner/products", strings.NewReader(`{"name":"Tea","price":0}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, cc.in.Price)
	assert.Zero(t, *cc.in.Price)
}

func TestOversizedUploadIsRejected(t *testing.T) {
	r, cc := newCatalogRouter()

	big := bytes.Repeat([]byte{0xff}, imaging.MaxUploadBytes+1)
	body, ct := multipartBody(t, map[string]string{"name": "Huge", "price": "1"},
		formFileField{field: "image", name: "huge.jpg", data: big})
	rec := serve(r, http.MethodPost, "/api/owner/products", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "image_too_large", errCode(t, rec))
	assert.Nil(t, cc.in)
}

type captureSettings struct {
	in *services.SettingsInput
}

func (cs *captureSettings) Get(context.Context, uuid.UUID) (*types.ShopSettings, error) {
	return &types.ShopSettings{}, nil
}

func (cs *captureSettings) Update(_ context.Context, _ uuid.UUID, in services.SettingsInput) (*types.ShopSettings, error) {
	cs.in = &in
	return &types.ShopSettings{Name: in.Name}, nil
}

func (cs *captureSettings) GenerateInitialsLogo(context.Context, uuid.UUID) (*types.ShopSettings, error) {
	return &types.ShopSettings{}, nil
}

func newSettingsRouter() (*gin.Engine, *captureSettings) {
	cs := &captureSettings{}
	h := NewSettingsHandler(cs)
	r := ownerRouter(uuid.New())
	r.PUT("/api/owner/settings", h.Update)
	return r, cs
}

func TestUpdateSettingsFromMultipartForm(t *testing.T) {
	r, cs := newSettingsRouter()
	logo := []byte("logo-bytes")

	body, ct := multipartBody(t, map[string]string{
		"name":           "Noodle Bar",
		"theme_color":    "#112233",
		"facebook":       "https://facebook.com/noodle",
		"show_facebook":  "on",
		"instagram":      "https://instagram.com/noodle",
		"show_instagram": "true",
		"telegram":       "https://t.me/noodle",
		"remove_logo":    "0",
		"extra_links":    `[{"label":"Order","url":"https://noodle.example","show":true}]`,
	}, formFileField{field: "logo", name: "logo.png", data: logo})

	rec := serve(r, http.MethodPut, "/api/owner/settings", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, cs.in)
	assert.Equal(t, "Noodle Bar", cs.in.Name)
	assert.Equal(t, "#112233", cs.in.ThemeColor)
	assert.True(t, cs.in.ShowFacebook)
	assert.True(t, cs.in.ShowInstagram)
	assert.False(t, cs.in.ShowTelegram, "an unticked checkbox is not posted")
	assert.False(t, cs.in.RemoveLogo)
	require.Len(t, cs.in.ExtraLinks, 1)
	assert.Equal(t, types.SocialLink{Label: "Order", URL: "https://noodle.example", Show: true}, cs.in.ExtraLinks[0])
	assert.Equal(t, logo, cs.in.Logo)
}

func TestUpdateSettingsRejectsMalformedLinks(t *testing.T) {
	r, cs := newSettingsRouter()

	body, ct := multipartBody(t, map[string]string{"name": "x", "extra_links": "{not json"})
	rec := serve(r, http.MethodPut, "/api/owner/settings", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_link", errCode(t, rec))
	assert.Nil(t, cs.in)
}

func TestUpdateSettingsJSONBody(t *testing.T) {
	r, cs := newSettingsRouter()

	rec := serve(r, http.MethodPut, "/api/owner/settings",
		strings.NewReader(`{"name":"Grill","show_telegram":true,"remove_logo":true}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grill", cs.in.Name)
	assert.True(t, cs.in.ShowTelegram)
	assert.True(t, cs.in.RemoveLogo)
	assert.Nil(t, cs.in.Logo)
}

func TestFormBool(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]bool{
		"on":    true,
		"ON":    true,
		"yes":   true,
		"1":     true,
		"true":  true,
		" on ":  true,
		"":      false,
		"off":   false,
		"0":     false,
		"false": false,
		"maybe": false,
	}
	for raw, want := range cases {
		var got bool
		r := gin.New()
		r.POST("/", func(c *gin.Context) {
			got = formBool(c, "flag")
			c.Status(http.StatusNoContent)
		})
		body, ct := multipartBody(t, map[string]string{"flag": raw})
		serve(r, http.MethodPost, "/", body, ct)
		if got != want {
			t.Fatalf("formBool(%q): want=%v got=%v", raw, want, got)
		}
	}
}

type stubMenu struct {
	menu *services.Menu
	err  error
}

func (s stubMenu) GetMenu(context.Context, string, string, string) (*services.Menu, error) {
	return s.menu, s.err
}
func (stubMenu) InvalidateShop(context.Context, uuid.UUID) {}
func (stubMenu) InvalidateSlug(context.Context, string)    {}

func menuRouter(svc services.MenuService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMenuHandler(svc)
	r := gin.New()
	r.GET("/api/menu/:slug", h.GetMenu)
	r.GET("/m/:slug", h.RenderMenu)
	return r
}

func TestRenderMenuPage(t *testing.T) {
	catID := uuid.New()
	m := &services.Menu{
		Lang:       services.LangEN,
		Langs:      []string{services.LangEN, services.LangKH, services.LangZH},
		Labels:     map[string]string{"search_placeholder": "Search", "popular": "Popular"},
		Shop:       services.MenuShop{Name: "Pho 99", Slug: "pho-99", ThemeColor: "#facc15"},
		Categories: []services.MenuCategory{{ID: catID, Name: "Soups"}},
		Products: []services.MenuProduct{{
			ID: uuid.New(), Name: "Pho Bo", Price: 4.5, Rating: 5, Time: "10-15 min",
			CategoryID: &catID, CategoryName: "Soups", IsPopular: true,
		}},
	}
	r := menuRouter(stubMenu{menu: m})

	rec := serve(r, http.MethodGet, "/m/pho-99?lang=en", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, services.LangEN, rec.Header().Get("Content-Language"))
	page := rec.Body.String()
	assert.Contains(t, page, "Pho 99")
	assert.Contains(t, page, "Pho Bo")
	assert.Contains(t, page, "$4.50")
	assert.Contains(t, page, "Soups")
}

func TestRenderMenuNotFoundPage(t *testing.T) {
	r := menuRouter(stubMenu{err: apierr.NotFound("shop_not_found", "shop not found")})

	rec := serve(r, http.MethodGet, "/m/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Menu not found")

	rec = serve(r, http.MethodGet, "/api/menu/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "shop_not_found", errCode(t, rec))
}

func TestRenderMenuHidesInternalErrors(t *testing.T) {
	r := menuRouter(stubMenu{err: errors.New("db down")})

	rec := serve(r, http.MethodGet, "/m/pho-99", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "db down")
}
