package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/http/response"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/services"
)

// AdminHandler is the superadmin console. Routes sit behind RequireRole(SUPERADMIN).
type AdminHandler struct {
	log     *logger.Logger
	admin   services.AdminService
	invites services.InviteService
}

func NewAdminHandler(log *logger.Logger, admin services.AdminService, invites services.InviteService) *AdminHandler {
	return &AdminHandler{log: log.With("handler", "AdminHandler"), admin: admin, invites: invites}
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	out, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/admin/shops?search=&status=&plan=
func (h *AdminHandler) ListShops(c *gin.Context) {
	filter := repos.ShopListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: types.ShopStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Plan:   types.Plan(strings.ToUpper(strings.TrimSpace(c.Query("plan")))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.RespondErr(c, apierr.BadRequest("invalid_status", "status must be ACTIVE or LOCKED"))
		return
	}
	if filter.Plan != "" && !filter.Plan.Valid() {
		response.RespondErr(c, apierr.BadRequest("invalid_plan", "plan must be FREE, PRO or PREMIUM"))
		return
	}
	out, err := h.admin.ListShops(c.Request.Context(), filter)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shops": out})
}

// GET /api/admin/shops/:id
func (h *AdminHandler) GetShop(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.admin.GetShop(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/admin/shops/:id/toggle-status
func (h *AdminHandler) ToggleShopStatus(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.admin.ToggleShopStatus(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shop": out})
}

// PATCH /api/admin/shops/:id/plan
// body: { "plan": "FREE" | "PRO" | "PREMIUM" }
func (h *AdminHandler) UpdateShopPlan(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	plan := types.Plan(strings.ToUpper(strings.TrimSpace(req.Plan)))
	out, err := h.admin.UpdateShopPlan(c.Request.Context(), id, plan)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shop": out})
}

// DELETE /api/admin/shops/:id
func (h *AdminHandler) DeleteShop(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.admin.DeleteShop(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/admin/products/:id
func (h *AdminHandler) ForceDeleteProduct(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.admin.ForceDeleteProduct(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/admin/invites
func (h *AdminHandler) ListInvites(c *gin.Context) {
	out, err := h.invites.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"invites": out})
}

// POST /api/admin/invites
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	var req services.CreateInviteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	out, err := h.invites.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"invite": out})
}

// DELETE /api/admin/invites/:id
func (h *AdminHandler) DeleteInvite(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.invites.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	out, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": out})
}

// DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, err := callerUserID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.admin.DeleteUser(c.Request.Context(), actorID, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/admin/users/:id/reset-link
func (h *AdminHandler) IssuePasswordReset(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	link, err := h.admin.IssuePasswordReset(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.log.Info("Password reset link issued", "user_id", id)
	response.RespondOK(c, gin.H{"link": link})
}
