package shop

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPro     Plan = "PRO"
	PlanPremium Plan = "PREMIUM"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanPremium:
		return true
	default:
		return false
	}
}

// Paid reports whether the plan unlocks dashboard editing.
func (p Plan) Paid() bool { return p == PlanPro || p == PlanPremium }

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusLocked Status = "LOCKED"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusLocked }

type Shop struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Plan        Plan       `gorm:"not null;default:'FREE';column:plan" json:"plan"`
	Status      Status     `gorm:"not null;default:'ACTIVE';column:status" json:"status"`
	TrialEndsAt *time.Time `gorm:"column:trial_ends_at" json:"trial_ends_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Shop) TableName() string { return "shop" }

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TrialExpiredAt reports whether a paid plan is riding on a trial that has ended.
func (s *Shop) TrialExpiredAt(now time.Time) bool {
	if s == nil || s.TrialEndsAt == nil || s.Plan == PlanFree {
		return false
	}
	return s.TrialEndsAt.Before(now)
}
