package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
)

// Roles is stored as a comma separated column and exposed as a JSON array.
type Roles []UserRole

func (r Roles) Has(roles ...UserRole) bool {
	for _, have := range r {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (r Roles) Strings() []string {
	out := make([]string, len(r))
	for i, role := range r {
		out[i] = string(role)
	}
	return out
}

func (r Roles) Value() (driver.Value, error) {
	return strings.Join(r.Strings(), ","), nil
}

func (r *Roles) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("roles: unsupported type %T", src)
	}

	*r = ParseRoles(strings.Split(raw, ","))
	return nil
}

func ParseRoles(values []string) Roles {
	roles := Roles{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		roles = append(roles, UserRole(v))
	}
	return roles
}

type User struct {
	ID           string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	Password     string     `json:"-" gorm:"not null"`
	FirstName    string     `json:"first_name" gorm:"size:50;not null"`
	LastName     string     `json:"last_name" gorm:"size:50;not null"`
	Bio          string     `json:"bio" gorm:"size:500"`
	Avatar       string     `json:"avatar"`
	Roles        Roles      `json:"roles" gorm:"type:varchar(64);not null;default:'user'"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLogin    *time.Time `json:"last_login"`
	RefreshToken *string    `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserSummary is the public projection of a user used when other records
// populate their author, mentions or likers.
type UserSummary struct {
	ID        string `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio,omitempty"`
}

func (UserSummary) TableName() string {
	return "users"
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
}

// AuthenticatedUser is the caller identity extracted from an access token.
type AuthenticatedUser struct {
	ID       string
	Email    string
	Username string
	Roles    Roles
}

func (a AuthenticatedUser) IsAdmin() bool {
	return a.Roles.Has(RoleAdmin)
}
