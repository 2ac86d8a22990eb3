package models

import "github.com/golang-jwt/jwt/v5"

// UserRole scopes what an authenticated caller may do.
type UserRole string

// Known roles. Tokens are issued by the external auth service; this API only
// validates and reads them.
const (
	RoleStudent    UserRole = "STUDENT"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdmin      UserRole = "ADMIN"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
