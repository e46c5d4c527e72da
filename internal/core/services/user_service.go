package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// UserService implements user administration.
type UserService struct {
	userRepo  ports.UserRepository
	txManager ports.TransactionManager
}

var _ ports.UserService = (*UserService)(nil)

// NewUserService creates a new user administration service
func NewUserService(userRepo ports.UserRepository, txManager ports.TransactionManager) *UserService {
	return &UserService{userRepo: userRepo, txManager: txManager}
}

// ListUsers retrieves users matching the filter. Admin only.
func (s *UserService) ListUsers(ctx context.Context, params ports.ListUsersParams) ([]*domain.User, error) {
	if !params.Actor.Role.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	return s.userRepo.List(ctx, ports.UserFilter{
		Role:   params.Role,
		Campus: params.Campus,
		Search: params.Search,
	})
}

// GetUser retrieves a single user. Users may read themselves; staff may
// read anyone.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID, actor domain.Actor) (*domain.User, error) {
	if actor.ID != userID && !actor.Role.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	return s.userRepo.GetByID(ctx, userID)
}

// UpdateUser applies a partial profile update. Users may edit their own
// profile; admins may edit anyone, including the role field.
func (s *UserService) UpdateUser(ctx context.Context, params ports.UpdateUserParams) (*domain.User, error) {
	isSelf := params.Actor.ID == params.UserID
	if !isSelf && !params.Actor.Role.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	// Read-modify-write inside a transaction so concurrent edits
	// cannot clobber each other.
	var updated *domain.User
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, params.UserID)
		if err != nil {
			return err
		}

		errs := apperrors.NewValidationErrors()

		if params.FullName != nil {
			if *params.FullName == "" {
				errs.Add("fullName", "Full name cannot be empty")
			} else {
				user.FullName = *params.FullName
			}
		}
		if params.Campus != nil {
			if !params.Campus.IsValid() {
				errs.Add("campus", "Campus must be a known value")
			} else {
				user.Campus = *params.Campus
			}
		}
		if params.Batch != nil {
			user.Batch = *params.Batch
		}
		if params.Phone != nil {
			user.Phone = *params.Phone
		}
		if params.Role != nil {
			// Role changes are an admin power.
			if !params.Actor.Role.IsAdmin() {
				return apperrors.ErrForbidden
			}
			if !params.Role.IsValid() {
				errs.Add("role", "Role must be one of student, mentor, admin, superadmin")
			} else {
				user.Role = *params.Role
			}
		}

		if errs.HasErrors() {
			return errs
		}

		updated, err = s.userRepo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes a user account. Admin only; self-deletion is refused.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID, actor domain.Actor) error {
	if !actor.Role.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if actor.ID == userID {
		return apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Cannot delete your own account")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

// ToggleUserStatus flips a user's active flag. Admin only.
func (s *UserService) ToggleUserStatus(ctx context.Context, userID uuid.UUID, actor domain.Actor) (*domain.User, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if actor.ID == userID {
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Cannot deactivate your own account")
	}

	var updated *domain.User
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		user.IsActive = !user.IsActive
		updated, err = s.userRepo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
