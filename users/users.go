package users

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user role. SuperAdmin is cross-tenant; the other
// roles only exist inside a company.
type RoleType string

const (
	RoleSuperAdmin   RoleType = "super_admin"   // Cross-tenant administrator, bypasses tenant checks
	RoleCompanyAdmin RoleType = "company_admin" // Manages users and settings within a company
	RoleEmployee     RoleType = "employee"      // Regular company member
)

// Valid reports whether r is one of the known roles.
func (r RoleType) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialized - cached copies carry no hash
	FullName     string    `json:"fullName,omitempty"`
	Role         RoleType  `json:"role"`
	CompanyID    string    `json:"companyId,omitempty"` // Empty only for super admins
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// IsSuperAdmin returns true if the user has cross-tenant privileges
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// Sanitized returns a copy of the user with the password hash stripped,
// suitable for responses and caching.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
