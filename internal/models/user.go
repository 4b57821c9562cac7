package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents a broker user's role
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleAgent UserRole = "agent"
)

// User represents a broker user (an agent or admin of the brokerage)
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	FullName     string     `json:"full_name" db:"full_name"`
	Phone        NullString `json:"phone,omitempty" db:"phone"`
	Role         UserRole   `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Active       bool       `json:"active" db:"active"`
	LastLoginAt  NullTime   `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest represents the request to create a broker user
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
	Role     string  `json:"role" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
}

// UpdateUserRequest represents the request to update a broker user
type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// Validate validates the CreateUserRequest
func (req *CreateUserRequest) Validate() error {
	role := UserRole(req.Role)
	if role != RoleAdmin && role != RoleAgent {
		return errors.New("invalid role: must be admin or agent")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return errors.New("full_name cannot be blank")
	}
	return nil
}
