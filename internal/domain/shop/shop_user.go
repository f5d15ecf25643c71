package shop

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/scandine-backend/internal/domain/user"
	"gorm.io/gorm"
)

type ShopUser struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_shop_user_pair,priority:1" json:"shop_id"`
	Shop      *Shop      `gorm:"constraint:OnDelete:CASCADE;foreignKey:ShopID;references:ID" json:"shop,omitempty"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_shop_user_pair,priority:2" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ShopUser) TableName() string { return "shop_user" }

func (su *ShopUser) BeforeCreate(tx *gorm.DB) error {
	if su.ID == uuid.Nil {
		su.ID = uuid.New()
	}
	return nil
}
