package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

func createTestUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser(domain.UserRegistrationParams{
		FullName: "Meera Nair",
		Email:    fmt.Sprintf("user-%s@example.com", uuid.NewString()),
		Password: "s3cret-pass",
		Role:     role,
		Campus:   domain.CampusKochi,
		Batch:    "2024-A",
	})
	require.NoError(t, err)

	repo := NewUserRepository(testPool)
	created, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	return created
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	created := createTestUser(t, domain.RoleStudent)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Meera Nair", fetched.FullName)
	assert.Equal(t, domain.RoleStudent, fetched.Role)
	assert.Equal(t, domain.CampusKochi, fetched.Campus)
	assert.True(t, fetched.IsActive)

	byEmail, err := repo.GetByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(testPool)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	first := createTestUser(t, domain.RoleStudent)

	dup, err := domain.NewUser(domain.UserRegistrationParams{
		FullName: "Another Person",
		Email:    first.Email,
		Password: "s3cret-pass",
		Role:     domain.RoleStudent,
		Campus:   domain.CampusCalicut,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, domain.RoleStudent)
	user.FullName = "Meera N"
	user.Role = domain.RoleMentor
	user.IsActive = false

	updated, err := repo.Update(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Meera N", updated.FullName)
	assert.Equal(t, domain.RoleMentor, updated.Role)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.UpdatedAt)
}

func TestUserRepository_Delete(t *testing.T) {
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, domain.RoleStudent)

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	err = repo.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_List_FilterByRole(t *testing.T) {
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	mentor := createTestUser(t, domain.RoleMentor)
	createTestUser(t, domain.RoleStudent)

	role := domain.RoleMentor
	users, err := repo.List(ctx, ports.UserFilter{Role: &role})
	require.NoError(t, err)

	found := false
	for _, u := range users {
		assert.Equal(t, domain.RoleMentor, u.Role)
		if u.ID == mentor.ID {
			found = true
		}
	}
	assert.True(t, found, "expected created mentor in listing")
}
