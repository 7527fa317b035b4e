package models

import "time"

// Role is a user's permission level. Checks against roles are
// minimum-level comparisons, not exact matches.
type Role int

const (
	RoleUser   Role = 0
	RoleWriter Role = 10
	RoleEditor Role = 20
	RoleAdmin  Role = 100
)

// AtLeast reports whether the role meets the given minimum level.
func (r Role) AtLeast(min Role) bool { return r >= min }

func (r Role) String() string {
	switch {
	case r >= RoleAdmin:
		return "ADMIN"
	case r >= RoleEditor:
		return "MAGAZINE_EDITOR"
	case r >= RoleWriter:
		return "MAGAZINE_WRITER"
	default:
		return "USER"
	}
}

// UserModel represents a magazine staff member or reader account.
type UserModel struct {
	Base
	Username      string     `json:"username"  gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	Password      string     `json:"-"         gorm:"not null"`
	Mail          string     `json:"mail"`
	Role          Role       `json:"role"      gorm:"default:0;index"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
