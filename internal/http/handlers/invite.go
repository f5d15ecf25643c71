package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scandine-backend/internal/http/response"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/services"
)

type InviteHandler struct {
	invites services.InviteService
}

func NewInviteHandler(invites services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

// GET /api/invites/:token
// Invalid invites answer 200 with valid=false so the register page can show the reason.
func (h *InviteHandler) Validate(c *gin.Context) {
	res, err := h.invites.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/register
func (h *InviteHandler) Register(c *gin.Context) {
	var req services.RegisterShopInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.New(http.StatusBadRequest, "invalid_request", err))
		return
	}
	res, err := h.invites.RegisterShop(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, res)
}
