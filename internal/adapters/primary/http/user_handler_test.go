package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/concernrise/concern-backend/internal/adapters/primary/http/middleware"
	"github.com/concernrise/concern-backend/internal/auth"
	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/mocks"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

func newUserRouter(svc *mocks.MockUserService) (*chi.Mux, *auth.TokenManager) {
	logger := testLogger()
	errorHandler := NewErrorHandler(logger)
	handler := NewUserHandler(svc, errorHandler, logger)
	tokenManager := auth.NewTokenManager("test-secret", time.Hour)

	router := chi.NewRouter()
	router.Use(mw.JWTMiddleware(tokenManager))
	router.Route("/users", handler.RegisterRoutes)

	return router, tokenManager
}

func TestListUsers(t *testing.T) {
	svc := mocks.NewMockUserService()
	router, tokenManager := newUserRouter(svc)

	adminID := uuid.New()
	mentor := sampleUser(domain.RoleMentor)

	svc.On("ListUsers", mock.Anything, mock.MatchedBy(func(params ports.ListUsersParams) bool {
		return params.Actor.ID == adminID && params.Role != nil && *params.Role == domain.RoleMentor
	})).Return([]*domain.User{mentor}, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/users?role=mentor", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, adminID, domain.RoleAdmin))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Data  []UserDTO `json:"data"`
		Count int       `json:"count"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Data, 1)
	assert.Equal(t, "mentor", response.Data[0].Role)
}

func TestListUsers_Forbidden(t *testing.T) {
	svc := mocks.NewMockUserService()
	router, tokenManager := newUserRouter(svc)

	svc.On("ListUsers", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrForbidden)

	req := httptest.NewRequest(stdhttp.MethodGet, "/users", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusForbidden, recorder.Code)
}

func TestUpdateUser(t *testing.T) {
	svc := mocks.NewMockUserService()
	router, tokenManager := newUserRouter(svc)

	user := sampleUser(domain.RoleStudent)
	updated := *user
	updated.FullName = "Meera N"

	svc.On("UpdateUser", mock.Anything, mock.MatchedBy(func(params ports.UpdateUserParams) bool {
		return params.UserID == user.ID && params.FullName != nil && *params.FullName == "Meera N"
	})).Return(&updated, nil)

	payload := []byte(`{"fullName":"Meera N"}`)
	req := httptest.NewRequest(stdhttp.MethodPut, "/users/"+user.ID.String(), bytes.NewReader(payload))
	req.Header.Set("Authorization", bearerToken(t, tokenManager, user.ID, domain.RoleStudent))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Data UserDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "Meera N", response.Data.FullName)
}

func TestToggleUserStatus(t *testing.T) {
	svc := mocks.NewMockUserService()
	router, tokenManager := newUserRouter(svc)

	adminID := uuid.New()
	user := sampleUser(domain.RoleStudent)
	user.IsActive = false

	svc.On("ToggleUserStatus", mock.Anything, user.ID, domain.Actor{ID: adminID, Role: domain.RoleAdmin}).
		Return(user, nil)

	req := httptest.NewRequest(stdhttp.MethodPut, "/users/"+user.ID.String()+"/toggle-status", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, adminID, domain.RoleAdmin))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response Envelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "User deactivated", response.Message)
}

func TestDeleteUser_InvalidID(t *testing.T) {
	svc := mocks.NewMockUserService()
	router, tokenManager := newUserRouter(svc)

	req := httptest.NewRequest(stdhttp.MethodDelete, "/users/not-a-uuid", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleAdmin))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
	svc.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything, mock.Anything)
}
