package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/yungbote/scandine-backend/internal/http/response"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var langNames = map[string]string{
	services.LangEN: "English",
	services.LangKH: "ខ្មែរ",
	services.LangZH: "中文",
}

var menuTemplates = template.Must(template.New("menu").Funcs(template.FuncMap{
	"price":    func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"langName": func(l string) string { return langNames[l] },
	"initial": func(s string) string {
		for _, r := range strings.TrimSpace(s) {
			return strings.ToUpper(string(r))
		}
		return "?"
	},
}).ParseFS(templateFS, "templates/*.html"))

// MenuHandler serves the public, unauthenticated menu.
type MenuHandler struct {
	menu services.MenuService
}

func NewMenuHandler(menu services.MenuService) *MenuHandler {
	return &MenuHandler{menu: menu}
}

func (h *MenuHandler) load(c *gin.Context) (*services.Menu, error) {
	lang := services.ResolveLang(c.Query("lang"), c.GetHeader("Accept-Language"))
	c.Header("Vary", "Accept-Language")
	c.Header("Content-Language", lang)
	return h.menu.GetMenu(c.Request.Context(), c.Param("slug"), lang, c.Query("q"))
}

// GET /api/menu/:slug?lang=&q=
func (h *MenuHandler) GetMenu(c *gin.Context) {
	m, err := h.load(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, m)
}

type menuPage struct {
	*services.Menu
	Sections []services.MenuSection
	Path     string
}

// GET /m/:slug?lang=&q=
func (h *MenuHandler) RenderMenu(c *gin.Context) {
	m, err := h.load(c)
	if err != nil {
		status := apierr.StatusOf(err)
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.Render(status, render.HTML{Template: menuTemplates, Name: "not_found.html", Data: gin.H{"Status": status}})
		return
	}
	page := menuPage{Menu: m, Sections: m.ByCategory(), Path: c.Request.URL.Path}
	c.Render(http.StatusOK, render.HTML{Template: menuTemplates, Name: "menu.html", Data: page})
}
