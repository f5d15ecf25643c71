package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/http/middleware"
	"github.com/yungbote/scandine-backend/internal/http/response"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/services"
)

type SettingsHandler struct {
	settings services.SettingsService
}

func NewSettingsHandler(settings services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GET /api/owner/shop
// Dashboard bootstrap: plan and trial state next to the branding settings.
func (h *SettingsHandler) Shop(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	s, err := h.settings.Get(c.Request.Context(), shopID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	access := middleware.ShopAccess(c)
	out := gin.H{"settings": s}
	if access != nil {
		out["shop"] = access.Shop
		out["plan"] = access.Plan
		out["can_edit"] = access.Plan.Paid()
	}
	response.RespondOK(c, out)
}

// GET /api/owner/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	s, err := h.settings.Get(c.Request.Context(), shopID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": s})
}

// PUT /api/owner/settings (JSON, or multipart with a "logo" file and
// "extra_links" as a JSON array)
func (h *SettingsHandler) Update(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	in, err := bindSettingsInput(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	s, err := h.settings.Update(c.Request.Context(), shopID, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": s})
}

// POST /api/owner/settings/logo/initials
func (h *SettingsHandler) GenerateLogo(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	s, err := h.settings.GenerateInitialsLogo(c.Request.Context(), shopID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": s})
}

type settingsRequest struct {
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
}

func (r settingsRequest) input() services.SettingsInput {
	return services.SettingsInput{
		Name:          r.Name,
		Address:       r.Address,
		Phone:         r.Phone,
		ThemeColor:    r.ThemeColor,
		Facebook:      r.Facebook,
		ShowFacebook:  r.ShowFacebook,
		Instagram:     r.Instagram,
		ShowInstagram: r.ShowInstagram,
		Telegram:      r.Telegram,
		ShowTelegram:  r.ShowTelegram,
		ExtraLinks:    r.ExtraLinks,
		RemoveLogo:    r.RemoveLogo,
	}
}

func bindSettingsInput(c *gin.Context) (services.SettingsInput, error) {
	var req settingsRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return services.SettingsInput{}, apierr.New(http.StatusBadRequest, "invalid_request", err)
		}
		return req.input(), nil
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return services.SettingsInput{}, apierr.New(http.StatusBadRequest, "invalid_multipart_form", err)
	}
	req.Name = c.PostForm("name")
	req.Address = c.PostForm("address")
	req.Phone = c.PostForm("phone")
	req.ThemeColor = c.PostForm("theme_color")
	req.Facebook = c.PostForm("facebook")
	req.ShowFacebook = formBool(c, "show_facebook")
	req.Instagram = c.PostForm("instagram")
	req.ShowInstagram = formBool(c, "show_instagram")
	req.Telegram = c.PostForm("telegram")
	req.ShowTelegram = formBool(c, "show_telegram")
	req.RemoveLogo = formBool(c, "remove_logo")
	if raw := strings.TrimSpace(c.PostForm("extra_links")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.ExtraLinks); err != nil {
			return services.SettingsInput{}, apierr.BadRequest("invalid_link", "extra_links must be a JSON array")
		}
	}
	in := req.input()
	logo, err := formFile(c, "logo")
	if err != nil {
		return in, err
	}
	in.Logo = logo
	return in, nil
}
