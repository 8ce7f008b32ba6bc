package entities

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash *string    `json:"-" db:"password_hash"` // never serialize to JSON
	Role         Role       `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"disabled"` // db column is 'disabled' (inverted)
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_seen"` // db column is 'last_seen'
}

// Role represents user roles in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// IsAdmin returns true if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Active returns true if the user is active
func (u *User) Active() bool {
	return u.IsActive
}

// Identity returns the signed-in reference handed to session consumers
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email}
}

// HashPassword returns the bcrypt hash stored for a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if the provided password matches the hashed password
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == nil {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
	return err == nil
}
