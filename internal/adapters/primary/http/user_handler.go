package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/concernrise/concern-backend/internal/adapters/primary/http/middleware"
	"github.com/concernrise/concern-backend/internal/adapters/primary/validation"
	"github.com/concernrise/concern-backend/internal/auth"
	"github.com/concernrise/concern-backend/internal/core/domain"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// UserHandler handles HTTP requests for user administration
type UserHandler struct {
	userService  ports.UserService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService ports.UserService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		userService:  userService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "user"),
	}
}

// RegisterRoutes sets up the routing for all user endpoints.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListUsers)

	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", h.HandleGetUser)
		r.Put("/", h.HandleUpdateUser)
		r.Delete("/", h.HandleDeleteUser)
		r.Put("/toggle-status", h.HandleToggleStatus)
	})
}

// UpdateUserRequest defines the expected JSON body for profile updates.
// Absent fields are left unchanged.
type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Campus   *string `json:"campus"`
	Batch    *string `json:"batch"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
}

// HandleListUsers handles GET /users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	v := validation.NewValidator()
	params := ports.ListUsersParams{
		Actor:  claims.Actor(),
		Search: r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("role"); raw != "" {
		role := domain.Role(raw)
		v.Custom("role", role.IsValid(), "Must be a known role")
		params.Role = &role
	}
	if raw := r.URL.Query().Get("campus"); raw != "" {
		campus := domain.Campus(raw)
		v.Custom("campus", campus.IsValid(), "Must be a known campus")
		params.Campus = &campus
	}

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	users, err := h.userService.ListUsers(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toUserDTOs(users))
}

// HandleGetUser handles GET /users/{userID}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID, claims.Actor())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toUserDTO(user))
}

// HandleUpdateUser handles PUT /users/{userID}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateUserRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateUserParams{
		UserID:   userID,
		Actor:    claims.Actor(),
		FullName: req.FullName,
		Batch:    req.Batch,
		Phone:    req.Phone,
	}
	if req.Campus != nil {
		campus := domain.Campus(*req.Campus)
		params.Campus = &campus
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		params.Role = &role
	}

	user, err := h.userService.UpdateUser(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user updated",
		"user_id", userID,
		"actor_id", claims.UserID,
	)

	WriteSuccessMessage(w, "User updated successfully", toUserDTO(user))
}

// HandleDeleteUser handles DELETE /users/{userID}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), userID, claims.Actor()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("user deleted",
		"user_id", userID,
		"actor_id", claims.UserID,
	)

	WriteSuccessMessage(w, "User deleted successfully", nil)
}

// HandleToggleStatus handles PUT /users/{userID}/toggle-status
func (h *UserHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	userID, err := h.parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.userService.ToggleUserStatus(r.Context(), userID, claims.Actor())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	message := "User deactivated"
	if user.IsActive {
		message = "User activated"
	}

	h.logger.Info("user status toggled",
		"user_id", userID,
		"is_active", user.IsActive,
		"actor_id", claims.UserID,
	)

	WriteSuccessMessage(w, message, toUserDTO(user))
}

// getClaims extracts and validates user claims from the request context
func (h *UserHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}
	return claims, true
}

// parseUserID extracts and validates the user ID from the URL
func (h *UserHandler) parseUserID(r *http.Request) (uuid.UUID, error) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("userID", false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return userID, nil
}
