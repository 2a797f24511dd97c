package models

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleUser    Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID        string         `db:"id" json:"id"`
	Email     string         `db:"email" json:"email"`
	Password  sql.NullString `db:"password_hash" json:"-"`
	Name      string         `db:"name" json:"name"`
	StoreID   string         `db:"store_id" json:"storeId"`
	Role      Role           `db:"role" json:"role"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// PublicUser is the projection handed out once credentials check out.
type PublicUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	StoreID string `json:"storeId"`
	Role    Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		StoreID: u.StoreID,
		Role:    u.Role,
	}
}
