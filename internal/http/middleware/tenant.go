package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/http/response"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/ctxutil"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/services"
)

const accessKey = "shop_access"

// TenantMiddleware binds an authenticated owner to their shop.
type TenantMiddleware struct {
	log           *logger.Logger
	shopUserRepo  repos.ShopUserRepo
	subscriptions services.SubscriptionService
}

func NewTenantMiddleware(log *logger.Logger, shopUserRepo repos.ShopUserRepo, subscriptions services.SubscriptionService) *TenantMiddleware {
	return &TenantMiddleware{
		log:           log.With("Middleware", "TenantMiddleware"),
		shopUserRepo:  shopUserRepo,
		subscriptions: subscriptions,
	}
}

// RequireShop resolves the caller's shop and runs the access check, which may
// persist a trial downgrade. It must run after RequireAuth.
func (tm *TenantMiddleware) RequireShop() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil {
			response.AbortErr(c, apierr.Unauthorized("unauthorized", "not signed in"))
			return
		}
		link, err := tm.shopUserRepo.GetByUserID(dbctx.Context{Ctx: ctx}, rd.UserID)
		if err != nil {
			response.AbortErr(c, fmt.Errorf("load shop membership: %w", err))
			return
		}
		if link == nil {
			response.AbortErr(c, apierr.Forbidden("no_shop", "No shop is linked to this account"))
			return
		}
		access, err := tm.subscriptions.CheckShopAccess(ctx, link.ShopID)
		if err != nil {
			response.AbortErr(c, err)
			return
		}
		switch access.Reason {
		case services.AccessNotFound:
			response.AbortErr(c, apierr.NotFound("shop_not_found", "Shop not found"))
			return
		case services.AccessLocked:
			tm.log.Info("Locked shop refused", "shop_id", link.ShopID)
			response.AbortErr(c, apierr.Locked("account_locked", "Account Locked"))
			return
		}
		rd.ShopID = link.ShopID
		c.Set(accessKey, access)
		c.Next()
	}
}

// RequireEditablePlan turns FREE shops read-only. It must run after RequireShop.
func (tm *TenantMiddleware) RequireEditablePlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tm.subscriptions.CanEdit(ShopAccess(c)) {
			response.AbortErr(c, apierr.PaymentRequired("plan_read_only", "Your plan is view-only. Upgrade to make changes."))
			return
		}
		c.Next()
	}
}

// ShopAccess returns the access decision stored by RequireShop.
func ShopAccess(c *gin.Context) *services.Access {
	v, ok := c.Get(accessKey)
	if !ok {
		return nil
	}
	access, _ := v.(*services.Access)
	return access
}
