package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/apierr"
	"github.com/yungbote/scandine-backend/internal/platform/ctxutil"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

const (
	// MaxLoginAttempts is the failure count at which lockout starts.
	MaxLoginAttempts = 4
	// maxLockoutExponent caps the lock at 2^16 minutes (about 45 days).
	maxLockoutExponent = 16
)

type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *types.User `json:"user"`
}

type AuthConfig struct {
	JWTSecretKey     string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	PasswordResetTTL time.Duration
	PublicBaseURL    string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	RequestPasswordReset(ctx context.Context, email string) error
	IssuePasswordReset(ctx context.Context, userID uuid.UUID) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
	GetAccessTTL() time.Duration
}

type authService struct {
	db                *gorm.DB
	log               *logger.Logger
	userRepo          repos.UserRepo
	userTokenRepo     repos.UserTokenRepo
	passwordResetRepo repos.PasswordResetRepo
	mailer            Mailer
	cfg               AuthConfig
	now               Clock
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	passwordResetRepo repos.PasswordResetRepo,
	mailer Mailer,
	cfg AuthConfig,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.PasswordResetTTL <= 0 {
		cfg.PasswordResetTTL = time.Hour
	}
	return &authService{
		db:                db,
		log:               serviceLog,
		userRepo:          userRepo,
		userTokenRepo:     userTokenRepo,
		passwordResetRepo: passwordResetRepo,
		mailer:            mailer,
		cfg:               cfg,
		now:               systemClock,
	}
}

// LockoutDuration is the lock applied after the given consecutive failure count.
// Zero below MaxLoginAttempts, then 1, 2, 4, ... minutes.
func LockoutDuration(attempts int) time.Duration {
	if attempts < MaxLoginAttempts {
		return 0
	}
	exp := attempts - MaxLoginAttempts
	if exp > maxLockoutExponent {
		exp = maxLockoutExponent
	}
	return time.Duration(1<<exp) * time.Minute
}

func minutesLeft(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

func (as *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apierr.BadRequest("missing_credentials", "Missing credentials")
	}

	dbc := dbctx.Context{Ctx: ctx}
	user, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if user == nil {
		return nil, apierr.Unauthorized("invalid_credentials", "Invalid credentials")
	}

	now := as.now()
	if user.LockedAt(now) {
		n := minutesLeft(user.LockoutUntil.Sub(now))
		return nil, apierr.Locked("locked_out", fmt.Sprintf("Locked out. Try again in %d minute(s).", n))
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, as.recordFailure(dbc, user, now)
	}

	var result *LoginResult
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := as.userRepo.ResetLockout(inner, user.ID); err != nil {
			return fmt.Errorf("reset lockout: %w", err)
		}
		user.FailedAttempts = 0
		user.LockoutUntil = nil
		res, err := as.issueSession(inner, user)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User logged in", "user_id", user.ID)
	return result, nil
}

// recordFailure persists the failed attempt outside any transaction so the
// penalty survives the error returned to the caller.
func (as *authService) recordFailure(dbc dbctx.Context, user *types.User, now time.Time) error {
	attempts := user.FailedAttempts + 1
	lock := LockoutDuration(attempts)

	var until *time.Time
	if lock > 0 {
		t := now.Add(lock)
		until = &t
	}
	if err := as.userRepo.RecordFailedLogin(dbc, user.ID, attempts, until); err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}

	if until != nil {
		as.log.Warn("Login locked out", "user_id", user.ID, "attempts", attempts, "minutes", minutesLeft(lock))
		return apierr.Locked("too_many_attempts", fmt.Sprintf("Too many attempts. Locked for %d minute(s).", minutesLeft(lock)))
	}
	remaining := MaxLoginAttempts - attempts
	return apierr.Unauthorized("invalid_password", fmt.Sprintf("Invalid password. %d attempts remaining.", remaining))
}

func (as *authService) issueSession(dbc dbctx.Context, user *types.User) (*LoginResult, error) {
	accessToken, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	userToken := &types.UserToken{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    as.now().Add(as.cfg.RefreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{userToken}); err != nil {
		as.log.Warn("Create user token failed", "error", err)
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: userToken.RefreshToken,
		ExpiresIn:    int(as.cfg.AccessTTL.Seconds()),
		User:         user,
	}, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.BadRequest("missing_refresh_token", "refresh token required")
	}

	var result *LoginResult
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(found) == 0 {
			return apierr.Unauthorized("invalid_refresh_token", "invalid refresh token")
		}
		existing := found[0]
		if !existing.ExpiresAt.After(as.now()) {
			return apierr.Unauthorized("refresh_token_expired", "refresh token expired")
		}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return apierr.Unauthorized("invalid_refresh_token", "no user for refresh token")
		}
		res, err := as.issueSession(dbc, users[0])
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("rotate refresh token: %w", err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized("unauthenticated", "no active session")
	}
	dbc := dbctx.Context{Ctx: ctx}
	found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if len(found) == 0 {
		return nil
	}
	return as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{found[0].ID})
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.cfg.JWTSecretKey))
}

// SetContextFromToken verifies the JWT and that its session row is still live,
// then attaches the caller to ctx. An empty token leaves ctx untouched.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.cfg.JWTSecretKey), nil
	}, jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "invalid_token", fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized("invalid_token", "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", "invalid subject in token")
	}

	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load session: %w", err)
	}
	if len(found) == 0 {
		return ctx, apierr.Unauthorized("session_revoked", "session no longer active")
	}
	// Role comes from the user row, not the claim.
	users, err := as.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return ctx, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return ctx, apierr.Unauthorized("session_revoked", "session no longer active")
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		SessionID:    found[0].ID,
		UserID:       userID,
		Role:         string(users[0].Role),
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration { return as.cfg.AccessTTL }

// RequestPasswordReset never reveals whether the address is registered.
func (as *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apierr.BadRequest("missing_email", "Email is required")
	}
	user, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return fmt.Errorf("load user by email: %w", err)
	}
	if user == nil {
		as.log.Debug("Password reset requested for unknown address")
		return nil
	}
	_, err = as.createReset(ctx, user)
	return err
}

// IssuePasswordReset is the super-admin path: it returns the link so it can be
// handed over out of band, and still emails it.
func (as *authService) IssuePasswordReset(ctx context.Context, userID uuid.UUID) (string, error) {
	users, err := as.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return "", apierr.NotFound("user_not_found", "user not found")
	}
	return as.createReset(ctx, users[0])
}

func (as *authService) createReset(ctx context.Context, user *types.User) (string, error) {
	token, err := randomHex(32)
	if err != nil {
		return "", err
	}
	row := &types.PasswordReset{
		UserID:    user.ID,
		TokenHash: sha256Hex(token),
		ExpiresAt: as.now().Add(as.cfg.PasswordResetTTL),
	}
	if _, err := as.passwordResetRepo.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return "", fmt.Errorf("create password reset: %w", err)
	}

	link := fmt.Sprintf("%s/auth/%s/reset-password?token=%s",
		trimBaseURL(as.cfg.PublicBaseURL), url.PathEscape(user.Email), url.QueryEscape(token))

	if as.mailer != nil {
		msg := Email{
			To:         user.Email,
			Subject:    "Reset your Scandine password",
			Text:       fmt.Sprintf("Use this link to choose a new password. It expires in %s.\n\n%s\n", as.cfg.PasswordResetTTL, link),
			Categories: []string{"password_reset"},
		}
		if err := as.mailer.Send(ctx, msg); err != nil {
			as.log.Warn("Password reset email failed", "user_id", user.ID, "error", err)
		}
	}
	as.log.Info("Password reset issued", "user_id", user.ID, "reset_link", link)
	return link, nil
}

func (as *authService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apierr.BadRequest("invalid_reset_token", "Invalid or expired reset link.")
	}
	if len(password) < MinPasswordLength {
		return apierr.BadRequest("weak_password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := as.passwordResetRepo.GetByTokenHash(dbc, sha256Hex(token))
		if err != nil {
			return fmt.Errorf("load reset token: %w", err)
		}
		now := as.now()
		if row == nil || row.UsedAt != nil || !row.ExpiresAt.After(now) {
			return apierr.BadRequest("invalid_reset_token", "Invalid or expired reset link.")
		}
		ok, err := as.passwordResetRepo.MarkUsed(dbc, row.ID, now)
		if err != nil {
			return fmt.Errorf("mark reset used: %w", err)
		}
		if !ok {
			return apierr.BadRequest("invalid_reset_token", "Invalid or expired reset link.")
		}
		if err := as.userRepo.UpdatePassword(dbc, row.UserID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := as.userTokenRepo.SoftDeleteByUserIDs(dbc, []uuid.UUID{row.UserID}); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		as.log.Info("Password reset completed", "user_id", row.UserID)
		return nil
	})
}
