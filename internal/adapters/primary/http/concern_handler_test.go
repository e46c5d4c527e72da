package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConcernRouter(svc ports.ConcernService) (*chi.Mux, *auth.TokenManager) {
	logger := testLogger()
	errorHandler := NewErrorHandler(logger)
	handler := NewConcernHandler(svc, nil, 5<<20, errorHandler, logger)
	tokenManager := auth.NewTokenManager("test-secret", time.Hour)

	router := chi.NewRouter()
	router.Use(mw.JWTMiddleware(tokenManager))
	router.Route("/concerns", handler.RegisterRoutes)

	return router, tokenManager
}

func bearerToken(t *testing.T, tm *auth.TokenManager, userID uuid.UUID, role domain.Role) string {
	t.Helper()
	token, err := tm.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func sampleConcern(t *testing.T, studentID uuid.UUID) *domain.Concern {
	t.Helper()
	concern, err := domain.NewConcern(domain.ConcernParams{
		StudentID:   studentID,
		Title:       "Wifi keeps dropping in the lab",
		Description: "The lab wifi disconnects every few minutes during sessions.",
		Category:    domain.CategoryInfrastructure,
		Severity:    domain.SeverityHigh,
		Campus:      domain.CampusKochi,
	})
	require.NoError(t, err)
	concern.TicketCode = "BRT000042"
	return concern
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCreateConcern(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	studentID := uuid.New()
	concern := sampleConcern(t, studentID)

	svc.On("CreateConcern", mock.Anything, mock.MatchedBy(func(params ports.CreateConcernParams) bool {
		return params.Actor.ID == studentID &&
			params.Title == "Wifi keeps dropping in the lab" &&
			params.Category == domain.CategoryInfrastructure &&
			params.Severity == domain.SeverityHigh
	})).Return(concern, nil)

	body, contentType := multipartBody(t, map[string]string{
		"title":       "Wifi keeps dropping in the lab",
		"description": "The lab wifi disconnects every few minutes during sessions.",
		"category":    "Infrastructure",
		"severity":    "High",
		"campus":      "Kochi",
	})

	req := httptest.NewRequest(stdhttp.MethodPost, "/concerns", body)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, studentID, domain.RoleStudent))
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	var response struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    domain.ConcernSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "BRT000042", response.Data.TicketCode)
	assert.Equal(t, "Submitted", response.Data.Status)

	svc.AssertExpectations(t)
}

func TestCreateConcern_Unauthorized(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, _ := newConcernRouter(svc)

	req := httptest.NewRequest(stdhttp.MethodPost, "/concerns", nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
	svc.AssertNotCalled(t, "CreateConcern", mock.Anything, mock.Anything)
}

func TestListConcerns(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	studentID := uuid.New()
	concern := sampleConcern(t, studentID)

	svc.On("ListConcerns", mock.Anything, mock.MatchedBy(func(params ports.ListConcernsParams) bool {
		return params.Actor.ID == studentID && params.Status != nil && *params.Status == domain.StatusSubmitted
	})).Return([]*domain.Concern{concern}, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/concerns?status=Submitted", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, studentID, domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Success bool                     `json:"success"`
		Data    []domain.ConcernSnapshot `json:"data"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Data, 1)
	assert.Equal(t, "BRT000042", response.Data[0].TicketCode)
}

func TestListConcerns_UnknownStatus(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	req := httptest.NewRequest(stdhttp.MethodGet, "/concerns?status=Bogus", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
	svc.AssertNotCalled(t, "ListConcerns", mock.Anything, mock.Anything)
}

func TestGetConcern_NotFound(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	concernID := uuid.New()
	svc.On("GetConcern", mock.Anything, concernID, mock.Anything).
		Return(nil, apperrors.ErrConcernNotFound)

	req := httptest.NewRequest(stdhttp.MethodGet, "/concerns/"+concernID.String(), nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusNotFound, recorder.Code)

	var response ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.False(t, response.Success)
	assert.Equal(t, "Concern not found", response.Message)
}

func TestUpdateStatus(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	mentorID := uuid.New()
	concern := sampleConcern(t, uuid.New())
	require.NoError(t, concern.Transition(domain.StatusInProgress, mentorID, "Working on it"))

	svc.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(params ports.UpdateStatusParams) bool {
		return params.Status == domain.StatusInProgress && params.Comment == "Working on it"
	})).Return(concern, nil)

	payload := []byte(`{"status":"In Progress","comment":"Working on it"}`)
	req := httptest.NewRequest(stdhttp.MethodPut, "/concerns/"+concern.ID.String()+"/status", bytes.NewReader(payload))
	req.Header.Set("Authorization", bearerToken(t, tokenManager, mentorID, domain.RoleMentor))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Success bool                   `json:"success"`
		Data    domain.ConcernSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "In Progress", response.Data.Status)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	payload := []byte(`{"status":"Escalated"}`)
	req := httptest.NewRequest(stdhttp.MethodPut, "/concerns/"+uuid.NewString()+"/status", bytes.NewReader(payload))
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleAdmin))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
	svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestAssignConcern(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	adminID := uuid.New()
	mentorID := uuid.New()
	concern := sampleConcern(t, uuid.New())
	require.NoError(t, concern.Assign(mentorID, "Ravi Kumar", adminID))

	svc.On("AssignConcern", mock.Anything, mock.MatchedBy(func(params ports.AssignConcernParams) bool {
		return params.MentorID == mentorID && params.Actor.ID == adminID
	})).Return(concern, nil)

	payload := []byte(`{"mentorId":"` + mentorID.String() + `"}`)
	req := httptest.NewRequest(stdhttp.MethodPut, "/concerns/"+concern.ID.String()+"/assign", bytes.NewReader(payload))
	req.Header.Set("Authorization", bearerToken(t, tokenManager, adminID, domain.RoleAdmin))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Data domain.ConcernSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "Assigned", response.Data.Status)
	require.NotNil(t, response.Data.AssignedTo)
	assert.Equal(t, mentorID.String(), *response.Data.AssignedTo)
}

func TestRateConcern_OutOfRange(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	payload := []byte(`{"rating":9}`)
	req := httptest.NewRequest(stdhttp.MethodPut, "/concerns/"+uuid.NewString()+"/rate", bytes.NewReader(payload))
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)

	var response ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Contains(t, response.Errors, "rating")
	svc.AssertNotCalled(t, "RateConcern", mock.Anything, mock.Anything)
}

func TestDeleteConcern_Forbidden(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	concernID := uuid.New()
	svc.On("DeleteConcern", mock.Anything, concernID, mock.Anything).
		Return(apperrors.ErrForbidden)

	req := httptest.NewRequest(stdhttp.MethodDelete, "/concerns/"+concernID.String(), nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusForbidden, recorder.Code)
}

func TestGetStats(t *testing.T) {
	svc := mocks.NewMockConcernService()
	router, tokenManager := newConcernRouter(svc)

	adminID := uuid.New()
	svc.On("GetStats", mock.Anything, domain.Actor{ID: adminID, Role: domain.RoleAdmin}).
		Return(&domain.ConcernStats{Total: 12, Pending: 4, Resolved: 6, Closed: 2}, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/concerns/stats", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, adminID, domain.RoleAdmin))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Data domain.ConcernStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, int64(12), response.Data.Total)
	assert.Equal(t, int64(4), response.Data.Pending)
}
