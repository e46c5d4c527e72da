package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		want bool
	}{
		{"student is valid", domain.RoleStudent, true},
		{"mentor is valid", domain.RoleMentor, true},
		{"admin is valid", domain.RoleAdmin, true},
		{"superadmin is valid", domain.RoleSuperAdmin, true},
		{"empty is invalid", domain.Role(""), false},
		{"uppercase is invalid", domain.Role("Student"), false},
		{"unknown is invalid", domain.Role("moderator"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsValid())
		})
	}
}

func TestRole_IsStaff(t *testing.T) {
	assert.False(t, domain.RoleStudent.IsStaff())
	assert.True(t, domain.RoleMentor.IsStaff())
	assert.True(t, domain.RoleAdmin.IsStaff())
	assert.True(t, domain.RoleSuperAdmin.IsStaff())
}

func TestRole_IsAdmin(t *testing.T) {
	assert.False(t, domain.RoleStudent.IsAdmin())
	assert.False(t, domain.RoleMentor.IsAdmin())
	assert.True(t, domain.RoleAdmin.IsAdmin())
	assert.True(t, domain.RoleSuperAdmin.IsAdmin())
}

func TestCampus_IsValid(t *testing.T) {
	assert.True(t, domain.CampusKochi.IsValid())
	assert.True(t, domain.CampusCalicut.IsValid())
	assert.True(t, domain.CampusTrivandrum.IsValid())
	assert.True(t, domain.CampusOther.IsValid())
	assert.False(t, domain.Campus("Bangalore").IsValid())
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid password", "Str0ngPass", true},
		{"too short", "Ab1", false},
		{"no uppercase", "weakpass1", false},
		{"no lowercase", "WEAKPASS1", false},
		{"no number", "WeakPassword", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := domain.ValidatePassword(tt.password)
			if tt.valid {
				assert.Empty(t, violations)
			} else {
				assert.NotEmpty(t, violations)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	tests := []struct {
		name        string
		params      domain.UserRegistrationParams
		expectError bool
		errorField  string
	}{
		{
			name: "valid student",
			params: domain.UserRegistrationParams{
				FullName: "Anu Thomas",
				Email:    "anu@example.com",
				Password: "Str0ngPass",
				Role:     domain.RoleStudent,
				Campus:   domain.CampusKochi,
				Batch:    "BCR-64",
			},
			expectError: false,
		},
		{
			name: "missing full name",
			params: domain.UserRegistrationParams{
				Email:    "anu@example.com",
				Password: "Str0ngPass",
				Role:     domain.RoleStudent,
			},
			expectError: true,
			errorField:  "fullName",
		},
		{
			name: "invalid email",
			params: domain.UserRegistrationParams{
				FullName: "Anu Thomas",
				Email:    "not-an-email",
				Password: "Str0ngPass",
				Role:     domain.RoleStudent,
			},
			expectError: true,
			errorField:  "email",
		},
		{
			name: "invalid role",
			params: domain.UserRegistrationParams{
				FullName: "Anu Thomas",
				Email:    "anu@example.com",
				Password: "Str0ngPass",
				Role:     domain.Role("faculty"),
			},
			expectError: true,
			errorField:  "role",
		},
		{
			name: "invalid campus",
			params: domain.UserRegistrationParams{
				FullName: "Anu Thomas",
				Email:    "anu@example.com",
				Password: "Str0ngPass",
				Role:     domain.RoleStudent,
				Campus:   domain.Campus("Mars"),
			},
			expectError: true,
			errorField:  "campus",
		},
		{
			name: "weak password",
			params: domain.UserRegistrationParams{
				FullName: "Anu Thomas",
				Email:    "anu@example.com",
				Password: "weak",
				Role:     domain.RoleStudent,
			},
			expectError: true,
			errorField:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := domain.NewUser(tt.params)

			if tt.expectError {
				require.Error(t, err)

				var validationErr *apperrors.ValidationErrors
				if assert.ErrorAs(t, err, &validationErr) {
					assert.Contains(t, validationErr.Errors, tt.errorField)
				}
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.True(t, user.IsActive)
				assert.NotEqual(t, tt.params.Password, user.PasswordHash)
				assert.True(t, user.CheckPassword(tt.params.Password))
				assert.False(t, user.CheckPassword("WrongPass1"))
			}
		})
	}
}

func TestUser_PublicProfileAndActor(t *testing.T) {
	user, err := domain.NewUser(domain.UserRegistrationParams{
		FullName: "Ravi Kumar",
		Email:    "ravi@example.com",
		Password: "Str0ngPass",
		Role:     domain.RoleMentor,
	})
	require.NoError(t, err)

	profile := user.PublicProfile()
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "Ravi Kumar", profile.FullName)
	assert.Equal(t, domain.RoleMentor, profile.Role)

	actor := user.Actor()
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, domain.RoleMentor, actor.Role)
}
