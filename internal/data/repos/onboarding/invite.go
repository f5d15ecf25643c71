package onboarding

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/scandine-backend/internal/domain"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type InviteStats struct {
	Total   int64 `json:"total"`
	Used    int64 `json:"used"`
	Pending int64 `json:"pending"`
}

type InviteRepo interface {
	Create(dbc dbctx.Context, invite *types.Invite) (*types.Invite, error)
	GetByToken(dbc dbctx.Context, token string) (*types.Invite, error)
	List(dbc dbctx.Context) ([]*types.Invite, error)
	Stats(dbc dbctx.Context, now time.Time) (InviteStats, error)
	MarkUsed(dbc dbctx.Context, inviteID, shopID uuid.UUID, at time.Time) (bool, error)
	Delete(dbc dbctx.Context, inviteID uuid.UUID) (bool, error)
}

type inviteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInviteRepo(db *gorm.DB, baseLog *logger.Logger) InviteRepo {
	repoLog := baseLog.With("repo", "InviteRepo")
	return &inviteRepo{db: db, log: repoLog}
}

func (r *inviteRepo) Create(dbc dbctx.Context, invite *types.Invite) (*types.Invite, error) {
	if err := dbc.Resolve(r.db).Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

// GetByToken returns nil, nil for unknown tokens.
func (r *inviteRepo) GetByToken(dbc dbctx.Context, token string) (*types.Invite, error) {
	var inv types.Invite
	err := dbc.Resolve(r.db).Where("token = ?", token).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inviteRepo) List(dbc dbctx.Context) ([]*types.Invite, error) {
	var results []*types.Invite
	if err := dbc.Resolve(r.db).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *inviteRepo) Stats(dbc dbctx.Context, now time.Time) (InviteStats, error) {
	var st InviteStats
	db := dbc.Resolve(r.db)
	if err := db.Model(&types.Invite{}).Count(&st.Total).Error; err != nil {
		return st, err
	}
	if err := db.Model(&types.Invite{}).Where("is_used = ?", true).Count(&st.Used).Error; err != nil {
		return st, err
	}
	if err := db.Model(&types.Invite{}).
		Where("is_used = ? AND expires_at > ?", false, now).
		Count(&st.Pending).Error; err != nil {
		return st, err
	}
	return st, nil
}

// MarkUsed consumes the invite only if it is still unused; false means it was already taken.
func (r *inviteRepo) MarkUsed(dbc dbctx.Context, inviteID, shopID uuid.UUID, at time.Time) (bool, error) {
	res := dbc.Resolve(r.db).
		Model(&types.Invite{}).
		Where("id = ? AND is_used = ?", inviteID, false).
		Updates(map[string]any{
			"is_used": true,
			"used_at": at,
			"shop_id": shopID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *inviteRepo) Delete(dbc dbctx.Context, inviteID uuid.UUID) (bool, error) {
	res := dbc.Resolve(r.db).
		Where("id = ?", inviteID).
		Delete(&types.Invite{})
	return res.RowsAffected > 0, res.Error
}
