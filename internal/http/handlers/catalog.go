package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/http/response"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/services"
)

// CatalogHandler serves the owner dashboard's categories and products. Every
// route is scoped to the caller's shop by the tenant middleware.
type CatalogHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{log: log.With("handler", "CatalogHandler"), catalog: catalog}
}

// GET /api/owner/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.ListCategories(c.Request.Context(), shopID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": out})
}

// POST /api/owner/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	out, err := h.catalog.CreateCategory(c.Request.Context(), shopID, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"category": out})
}

// PATCH /api/owner/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	out, err := h.catalog.UpdateCategory(c.Request.Context(), shopID, id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"category": out})
}

// PUT /api/owner/categories/order
// body: { "ids": ["...", "..."] }
func (h *CatalogHandler) ReorderCategories(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	if err := h.catalog.ReorderCategories(c.Request.Context(), shopID, req.IDs); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/owner/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), shopID, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/owner/products?search=&category_id=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	filter := repos.ProductFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondErr(c, apierr.BadRequest("invalid_category_id", "invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}
	out, err := h.catalog.ListProducts(c.Request.Context(), shopID, filter)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": out})
}

// GET /api/owner/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.GetProduct(c.Request.Context(), shopID, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": out})
}

// POST /api/owner/products (JSON or multipart with an "image" file)
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	in, err := bindProductInput(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.CreateProduct(c.Request.Context(), shopID, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"product": out})
}

// PUT /api/owner/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	in, err := bindProductInput(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.UpdateProduct(c.Request.Context(), shopID, id, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product": out})
}

// DELETE /api/owner/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	shopID, err := callerShopID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), shopID, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func bindProductInput(c *gin.Context) (services.ProductInput, error) {
	var in services.ProductInput
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, apierr.New(http.StatusBadRequest, "invalid_request", err)
		}
		return in, nil
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return in, apierr.New(http.StatusBadRequest, "invalid_multipart_form", err)
	}
	in.Name = c.PostForm("name")
	in.NameKh = c.PostForm("name_kh")
	in.NameZh = c.PostForm("name_zh")
	in.Description = c.PostForm("description")
	in.Time = c.PostForm("time")
	in.IsPopular = formBool(c, "is_popular")

	var err error
	if in.Price, err = formFloat(c, "price"); err != nil {
		return in, err
	}
	if in.Rating, err = formFloat(c, "rating"); err != nil {
		return in, err
	}
	if in.CategoryID, err = formUUID(c, "category_id"); err != nil {
		return in, err
	}
	if in.Image, err = formFile(c, "image"); err != nil {
		return in, err
	}
	return in, nil
}
