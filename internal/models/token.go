package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims are the custom claims embedded in access tokens.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Name   string   `json:"nombre"`
	Email  string   `json:"email"`
	Role   UserRole `json:"rol"`
	jwt.RegisteredClaims
}

// RefreshToken is a persisted, revocable refresh token.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    int64      `db:"usuario_id" json:"usuario_id"`
	Token     string     `db:"token" json:"token"`
	ExpiresAt time.Time  `db:"expira_en" json:"expira_en"`
	CreatedAt time.Time  `db:"creado_en" json:"creado_en"`
	Revoked   bool       `db:"revocado" json:"revocado"`
	RevokedAt *time.Time `db:"revocado_en" json:"revocado_en,omitempty"`
	IPAddress string     `db:"ip_address" json:"-"`
	UserAgent string     `db:"user_agent" json:"-"`
}
