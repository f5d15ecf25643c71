package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type PasswordResetRepo interface {
	Create(dbc dbctx.Context, reset *types.PasswordReset) (*types.PasswordReset, error)
	GetByTokenHash(dbc dbctx.Context, tokenHash string) (*types.PasswordReset, error)
	MarkUsed(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	PurgeExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type passwordResetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPasswordResetRepo(db *gorm.DB, baseLog *logger.Logger) PasswordResetRepo {
	repoLog := baseLog.With("repo", "PasswordResetRepo")
	return &passwordResetRepo{db: db, log: repoLog}
}

func (r *passwordResetRepo) Create(dbc dbctx.Context, reset *types.PasswordReset) (*types.PasswordReset, error) {
	if err := dbc.Resolve(r.db).Create(reset).Error; err != nil {
		return nil, err
	}
	return reset, nil
}

// GetByTokenHash returns nil, nil when no row matches.
func (r *passwordResetRepo) GetByTokenHash(dbc dbctx.Context, tokenHash string) (*types.PasswordReset, error) {
	var row types.PasswordReset
	err := dbc.Resolve(r.db).
		Where("token_hash = ?", tokenHash).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkUsed flips used_at only if it is still unset; false means another request won.
func (r *passwordResetRepo) MarkUsed(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := dbc.Resolve(r.db).
		Model(&types.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *passwordResetRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.Resolve(r.db).
		Where("user_id IN ?", userIDs).
		Delete(&types.PasswordReset{}).Error
}

func (r *passwordResetRepo) PurgeExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.Resolve(r.db).
		Where("expires_at < ? OR used_at IS NOT NULL", before).
		Delete(&types.PasswordReset{})
	return res.RowsAffected, res.Error
}
