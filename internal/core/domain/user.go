package domain

import (
	"net/mail"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 255
	MaxEmailLength    = 255
)

// Role is the closed set of actor roles. Access decisions match on this
// type exhaustively rather than on raw strings.
type Role string

const (
	RoleStudent    Role = "student"
	RoleMentor     Role = "mentor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsValid reports whether the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may work on concerns.
func (r Role) IsStaff() bool {
	switch r {
	case RoleMentor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role has unconditional access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Campus identifies a physical campus.
type Campus string

const (
	CampusKochi      Campus = "Kochi"
	CampusCalicut    Campus = "Calicut"
	CampusTrivandrum Campus = "Trivandrum"
	CampusOther      Campus = "Other"
)

// IsValid reports whether the campus is a known value.
func (c Campus) IsValid() bool {
	switch c {
	case CampusKochi, CampusCalicut, CampusTrivandrum, CampusOther:
		return true
	}
	return false
}

// User is an authenticated account.
type User struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Campus       Campus
	Batch        string
	Phone        string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// PublicProfile is the subset of user fields safe to attach to messages
// and API responses.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Role     Role      `json:"role"`
}

// PublicProfile returns the user's public fields.
func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// Actor carries the identity and role the access policy needs. It is the
// only thing the core knows about authentication.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Actor derives the policy view of a user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// UserRegistrationParams holds parameters for user registration.
type UserRegistrationParams struct {
	FullName string
	Email    string
	Password string
	Role     Role
	Campus   Campus
	Batch    string
	Phone    string
}

// Validate validates user registration parameters.
func (p *UserRegistrationParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.FullName == "" {
		errs.Add("fullName", "Full name is required")
	} else if len(p.FullName) > MaxFullNameLength {
		errs.Add("fullName", "Full name must be 255 characters or less")
	}

	if p.Email == "" {
		errs.Add("email", "Email is required")
	} else if len(p.Email) > MaxEmailLength {
		errs.Add("email", "Email must be 255 characters or less")
	} else if !isValidEmail(p.Email) {
		errs.Add("email", "Invalid email format")
	}

	if !p.Role.IsValid() {
		errs.Add("role", "Role must be one of student, mentor, admin, superadmin")
	}

	if p.Campus != "" && !p.Campus.IsValid() {
		errs.Add("campus", "Campus must be a known value")
	}

	for _, msg := range ValidatePassword(p.Password) {
		errs.Add("password", msg)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidatePassword checks a password against the security requirements and
// returns the list of violations (empty if valid).
func ValidatePassword(password string) []string {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}
	if len(password) > MaxPasswordLength {
		violations = append(violations, "Password must be 128 characters or less")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !hasNumber {
		violations = append(violations, "Password must contain at least one number")
	}

	return violations
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// CheckPassword verifies the provided password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	if violations := ValidatePassword(password); len(violations) > 0 {
		return "", apperrors.ErrPasswordTooWeak
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// NewUser creates a new user with validated parameters.
func NewUser(params UserRegistrationParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		FullName:     params.FullName,
		Email:        params.Email,
		PasswordHash: hashed,
		Role:         params.Role,
		Campus:       params.Campus,
		Batch:        params.Batch,
		Phone:        params.Phone,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
