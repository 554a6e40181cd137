package model

import (
	"time"
)

// Role values recognised by the roster.
const (
	RoleCadet      = "cadet"
	RoleInstructor = "instructor"
)

// User represents one member of the unit roster. Identity comes from Telegram:
// at least one of TelegramID / TelegramUsername must be present.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TelegramID       *int64    `gorm:"uniqueIndex" json:"telegram_id"`
	TelegramUsername *string   `gorm:"uniqueIndex" json:"telegram_username"`
	FullName         string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Rank             string    `gorm:"type:varchar(50);not null" json:"rank"`
	Role             string    `gorm:"type:varchar(50);not null" json:"role"` // cadet, instructor
	IsAdmin          bool      `gorm:"not null;default:false" json:"is_admin"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DisplayName is the "RANK Full Name" form used in rosters and broadcasts.
func (u *User) DisplayName() string {
	return u.Rank + " " + u.FullName
}
