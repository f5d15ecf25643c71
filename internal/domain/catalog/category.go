package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID    uuid.UUID `gorm:"type:uuid;index;not null" json:"shop_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	NameKh    string    `gorm:"column:name_kh" json:"name_kh"`
	NameZh    string    `gorm:"column:name_zh" json:"name_zh"`
	SortOrder int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
