package models

import "time"

// Role is the closed set of access levels. RoleGuest is never stored; it
// describes a request that carries no session.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFree, RolePremium, RoleAdmin:
		return true
	}
	return false
}

// IsPremium reports whether the role is exempt from the free trial window.
func (r Role) IsPremium() bool {
	return r == RolePremium || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash []byte    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is the per-request identity. Role is a snapshot taken at login and
// is not refreshed from storage while the session lives.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	LoginTime time.Time `json:"loginTime"`
}

func (s Session) IsAdmin() bool {
	return s.Role.IsAdmin()
}

func (s Session) IsPremium() bool {
	return s.Role.IsPremium()
}
