package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultProductTime   = "15min"
	DefaultProductRating = 4.5
	DefaultProductImage  = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?auto=format&fit=crop&w=600&q=80"
)

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"shop_id"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL;foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	NameKh      string     `gorm:"column:name_kh" json:"name_kh"`
	NameZh      string     `gorm:"column:name_zh" json:"name_zh"`
	Description string     `gorm:"column:description" json:"description"`
	Price       float64    `gorm:"type:numeric(10,2);not null;default:0;column:price" json:"price"`
	Rating      *float64   `gorm:"column:rating" json:"rating,omitempty"`
	Time        string     `gorm:"column:time" json:"time"`
	ImageKey    string     `gorm:"column:image_key" json:"-"`
	ImageURL    string     `gorm:"column:image_url" json:"image_url"`
	IsPopular   bool       `gorm:"not null;default:false;column:is_popular" json:"is_popular"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
