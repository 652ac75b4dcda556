package model

import (
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleStudent   = "student"
	RoleProfessor = "professor"
)

type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	HashedPassword string     `json:"-"` // Not exposed
	Role           string     `json:"role"`
	Points         int        `json:"points"`
	Badges         []string   `json:"badges"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// HasBadge reports whether the badge is already part of the user's stored set.
func (u *User) HasBadge(id BadgeID) bool {
	for _, b := range u.Badges {
		if b == string(id) {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStudent, RoleProfessor:
		return true
	}
	return false
}
