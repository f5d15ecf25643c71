package shop

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultThemeColor       = "#5cb85c"
	DefaultPublicThemeColor = "#facc15"
	DefaultSettingsName     = "Gourmet Shop"
)

// SocialLink is an additional link rendered under the built-in networks.
type SocialLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Show  bool   `json:"show"`
}

type ShopSettings struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"shop_id"`
	Shop       *Shop     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ShopID;references:ID" json:"-"`
	Name       string    `gorm:"column:name" json:"name"`
	Address    string    `gorm:"column:address" json:"address"`
	Phone      string    `gorm:"column:phone" json:"phone"`
	ThemeColor string    `gorm:"column:theme_color" json:"theme_color"`
	LogoKey    string    `gorm:"column:logo_key" json:"-"`
	LogoURL    string    `gorm:"column:logo_url" json:"logo_url"`

	Facebook      string `gorm:"column:facebook" json:"facebook"`
	ShowFacebook  bool   `gorm:"not null;default:false;column:show_facebook" json:"show_facebook"`
	Instagram     string `gorm:"column:instagram" json:"instagram"`
	ShowInstagram bool   `gorm:"not null;default:false;column:show_instagram" json:"show_instagram"`
	Telegram      string `gorm:"column:telegram" json:"telegram"`
	ShowTelegram  bool   `gorm:"not null;default:false;column:show_telegram" json:"show_telegram"`

	ExtraLinks datatypes.JSONSlice[SocialLink] `gorm:"column:extra_links" json:"extra_links"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ShopSettings) TableName() string { return "shop_settings" }

func (s *ShopSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
