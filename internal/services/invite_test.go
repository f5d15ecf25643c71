package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/scandine-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
)

func newTestInvites(t *testing.T, env *testEnv, now *time.Time) (*inviteService, *fakeMailer) {
	t.Helper()
	mail := &fakeMailer{}
	svc := NewInviteService(env.db, env.log, env.invites, env.users, env.shops, env.shopUsers, env.settings, mail, InviteConfig{
		PublicBaseURL: "https://scandine.test",
		TrialDays:     7,
	}).(*inviteService)
	svc.now = fixedClock(now)
	return svc, mail
}

func TestClampInviteDays(t *testing.T) {
	assert.Equal(t, 7, ClampInviteDays(0, 7))
	assert.Equal(t, 1, ClampInviteDays(-3, 0))
	assert.Equal(t, 14, ClampInviteDays(14, 7))
	assert.Equal(t, 30, ClampInviteDays(90, 7))
}

func TestInviteCreateAndValidate(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	svc, mail := newTestInvites(t, env, &now)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateInviteInput{ShopName: "Pizza House", Email: " Owner@Pizza.test ", ExpiresInDays: 45})
	require.NoError(t, err)
	assert.Len(t, view.Token, 64)
	assert.Equal(t, "owner@pizza.test", view.Email)
	assert.Equal(t, "ACTIVE", view.Status)
	assert.Equal(t, "https://scandine.test/register?token="+view.Token, view.Link)
	assert.True(t, view.ExpiresAt.Equal(now.Add(30*24*time.Hour)))

	msg, ok := mail.last()
	require.True(t, ok)
	assert.Equal(t, "owner@pizza.test", msg.To)
	assert.Contains(t, msg.Text, view.Link)

	check, err := svc.Validate(ctx, view.Token)
	require.NoError(t, err)
	assert.True(t, check.Valid)

	check, err = svc.Validate(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, "Invalid invite link.", check.Error)

	check, err = svc.Validate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Invalid invite link.", check.Error)

	now = now.Add(31 * 24 * time.Hour)
	check, err = svc.Validate(ctx, view.Token)
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, "This invite has expired.", check.Error)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EXPIRED", list[0].Status)
}

func TestRegisterShopFromInvite(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestInvites(t, env, &now)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	// An existing shop takes the base slug.
	testutil.SeedShop(t, ctx, env.db, "pizza-house", types.PlanFree)
	inv := testutil.SeedInvite(t, ctx, env.db, "tok-1", now.Add(24*time.Hour))

	_, err := svc.RegisterShop(ctx, RegisterShopInput{Token: inv.Token, ShopName: "Pizza House", Password: "123"})
	requireAPIErr(t, err, http.StatusBadRequest, "weak_password")

	res, err := svc.RegisterShop(ctx, RegisterShopInput{Token: inv.Token, ShopName: "Pizza House", Email: "Boss@Pizza.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "boss@pizza.test", res.User.Email)
	assert.Equal(t, types.RoleOwner, res.User.Role)
	assert.Equal(t, "pizza-house-2", res.Shop.Slug)
	assert.Equal(t, types.PlanPro, res.Shop.Plan)
	assert.Equal(t, types.ShopStatusActive, res.Shop.Status)
	require.NotNil(t, res.Shop.TrialEndsAt)
	assert.True(t, res.Shop.TrialEndsAt.Equal(now.Add(7*24*time.Hour)))

	link, err := env.shopUsers.GetByUserID(dbc, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, res.Shop.ID, link.ShopID)

	settings, err := env.settings.GetByShopID(dbc, res.Shop.ID)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "Pizza House", settings.Name)
	assert.Equal(t, types.DefaultThemeColor, settings.ThemeColor)

	stored, err := env.invites.GetByToken(dbc, inv.Token)
	require.NoError(t, err)
	assert.True(t, stored.IsUsed)
	require.NotNil(t, stored.ShopID)
	assert.Equal(t, res.Shop.ID, *stored.ShopID)

	_, err = svc.RegisterShop(ctx, RegisterShopInput{Token: inv.Token, ShopName: "Again", Email: "x@y.test", Password: "secret1"})
	ae := requireAPIErr(t, err, http.StatusBadRequest, "invalid_invite")
	assert.Equal(t, "This invite has already been used.", ae.Error())
}

func TestRegisterShopRollsBackOnTakenEmail(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestInvites(t, env, &now)
	ctx := context.Background()

	testutil.SeedUser(t, ctx, env.db, "taken@pizza.test")
	inv := testutil.SeedInvite(t, ctx, env.db, "tok-2", now.Add(24*time.Hour))

	_, err := svc.RegisterShop(ctx, RegisterShopInput{Token: inv.Token, ShopName: "Taco Bar", Email: "taken@pizza.test", Password: "secret1"})
	requireAPIErr(t, err, http.StatusConflict, "email_taken")

	stored, err := env.invites.GetByToken(dbctx.Context{Ctx: ctx}, inv.Token)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed)
	exists, err := env.shops.SlugExists(dbctx.Context{Ctx: ctx}, "taco-bar")
	require.NoError(t, err)
	assert.False(t, exists)

	// Falls back to the invite's own email and shop name.
	res, err := svc.RegisterShop(ctx, RegisterShopInput{Token: inv.Token, Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, inv.Email, res.User.Email)
	assert.Equal(t, inv.ShopName, res.Shop.Name)
}

func TestInviteDelete(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestInvites(t, env, &now)
	ctx := context.Background()

	inv := testutil.SeedInvite(t, ctx, env.db, "tok-3", now.Add(time.Hour))
	require.NoError(t, svc.Delete(ctx, inv.ID))
	requireAPIErr(t, svc.Delete(ctx, inv.ID), http.StatusNotFound, "invite_not_found")
}
