package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleEditor  UserRole = "editor"
	RoleUsuario UserRole = "usuario"
)

// User represents an application user stored in the usuarios table.
type User struct {
	ID                int64      `db:"id" json:"id"`
	Name              string     `db:"nombre" json:"nombre"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Role              UserRole   `db:"rol" json:"rol"`
	Active            bool       `db:"activo" json:"activo"`
	ResetToken        *string    `db:"reset_token" json:"-"`
	ResetTokenExpires *time.Time `db:"reset_token_expira" json:"-"`
	LastLogin         *time.Time `db:"ultimo_acceso" json:"ultimo_acceso,omitempty"`
	CreatedAt         time.Time  `db:"creado_en" json:"creado_en"`
	UpdatedAt         time.Time  `db:"actualizado_en" json:"actualizado_en"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
