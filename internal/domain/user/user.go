package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleSuperAdmin Role = "SUPERADMIN"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     Role      `gorm:"not null;default:'OWNER';column:role" json:"role"`

	// Consecutive failed logins since the last success.
	FailedAttempts int        `gorm:"not null;default:0;column:failed_attempts" json:"failed_attempts"`
	LockoutUntil   *time.Time `gorm:"column:lockout_until" json:"lockout_until,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsSuperAdmin() bool { return u != nil && u.Role == RoleSuperAdmin }

// LockedAt reports whether the account is locked out at the given instant.
func (u *User) LockedAt(now time.Time) bool {
	return u != nil && u.LockoutUntil != nil && u.LockoutUntil.After(now)
}
