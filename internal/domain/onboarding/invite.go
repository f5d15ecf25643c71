package onboarding

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultInviteDays = 7
	MinInviteDays     = 1
	MaxInviteDays     = 30
)

type Invite struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Token     string     `gorm:"uniqueIndex;not null;column:token" json:"token"`
	Email     string     `gorm:"column:email" json:"email"`
	ShopName  string     `gorm:"column:shop_name" json:"shop_name"`
	ExpiresAt time.Time  `gorm:"index;not null;column:expires_at" json:"expires_at"`
	IsUsed    bool       `gorm:"not null;default:false;column:is_used" json:"is_used"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
	ShopID    *uuid.UUID `gorm:"type:uuid;column:shop_id" json:"shop_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Invite) TableName() string { return "invite" }

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *Invite) ExpiredAt(now time.Time) bool { return !i.ExpiresAt.After(now) }

// PendingAt reports whether the invite can still be redeemed.
func (i *Invite) PendingAt(now time.Time) bool { return !i.IsUsed && !i.ExpiredAt(now) }
