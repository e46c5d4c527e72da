package http

import (
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

func newChatRouter(svc *mocks.MockChatService) (*chi.Mux, *auth.TokenManager) {
	logger := testLogger()
	errorHandler := NewErrorHandler(logger)
	handler := NewChatHandler(svc, nil, 5<<20, errorHandler, logger)
	tokenManager := auth.NewTokenManager("test-secret", time.Hour)

	router := chi.NewRouter()
	router.Use(mw.JWTMiddleware(tokenManager))
	router.Route("/chat", handler.RegisterRoutes)

	return router, tokenManager
}

func sampleMessage(t *testing.T, concernID, senderID uuid.UUID, text string) *domain.ChatMessage {
	t.Helper()
	message, err := domain.NewChatMessage(domain.ChatMessageParams{
		ConcernID: concernID,
		SenderID:  senderID,
		Message:   text,
	})
	require.NoError(t, err)
	message.Sender = &domain.PublicProfile{
		ID:       senderID,
		FullName: "Meera Nair",
		Role:     domain.RoleStudent,
	}
	return message
}

func TestSendMessage(t *testing.T) {
	svc := mocks.NewMockChatService()
	router, tokenManager := newChatRouter(svc)

	concernID := uuid.New()
	senderID := uuid.New()
	message := sampleMessage(t, concernID, senderID, "Any update on this?")

	svc.On("SendMessage", mock.Anything, mock.MatchedBy(func(params ports.SendMessageParams) bool {
		return params.ConcernID == concernID &&
			params.Actor.ID == senderID &&
			params.Message == "Any update on this?"
	})).Return(message, nil)

	body, contentType := multipartBody(t, map[string]string{
		"message": "Any update on this?",
	})

	req := httptest.NewRequest(stdhttp.MethodPost, "/chat/"+concernID.String(), body)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, senderID, domain.RoleStudent))
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	var response struct {
		Success bool                       `json:"success"`
		Data    domain.ChatMessageSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, "Any update on this?", response.Data.Message)
	require.NotNil(t, response.Data.Sender)
	assert.Equal(t, "Meera Nair", response.Data.Sender.FullName)
	assert.False(t, response.Data.IsRead)
}

func TestGetMessages(t *testing.T) {
	svc := mocks.NewMockChatService()
	router, tokenManager := newChatRouter(svc)

	concernID := uuid.New()
	senderID := uuid.New()
	messages := []*domain.ChatMessage{
		sampleMessage(t, concernID, senderID, "First"),
		sampleMessage(t, concernID, senderID, "Second"),
	}

	svc.On("GetMessages", mock.Anything, concernID, mock.Anything).Return(messages, nil)

	req := httptest.NewRequest(stdhttp.MethodGet, "/chat/"+concernID.String(), nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, senderID, domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Data  []domain.ChatMessageSnapshot `json:"data"`
		Count int                          `json:"count"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Data, 2)
	assert.Equal(t, "First", response.Data[0].Message)
}

func TestGetMessages_Forbidden(t *testing.T) {
	svc := mocks.NewMockChatService()
	router, tokenManager := newChatRouter(svc)

	concernID := uuid.New()
	svc.On("GetMessages", mock.Anything, concernID, mock.Anything).
		Return(nil, apperrors.ErrForbidden)

	req := httptest.NewRequest(stdhttp.MethodGet, "/chat/"+concernID.String(), nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusForbidden, recorder.Code)
}

func TestMarkRead(t *testing.T) {
	svc := mocks.NewMockChatService()
	router, tokenManager := newChatRouter(svc)

	concernID := uuid.New()
	readerID := uuid.New()
	svc.On("MarkMessagesRead", mock.Anything, concernID, domain.Actor{ID: readerID, Role: domain.RoleMentor}).
		Return(int64(3), nil)

	req := httptest.NewRequest(stdhttp.MethodPut, "/chat/"+concernID.String()+"/read", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, readerID, domain.RoleMentor))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response struct {
		Success bool             `json:"success"`
		Data    MarkReadResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, int64(3), response.Data.Updated)
}

func TestMarkRead_InvalidConcernID(t *testing.T) {
	svc := mocks.NewMockChatService()
	router, tokenManager := newChatRouter(svc)

	req := httptest.NewRequest(stdhttp.MethodPut, "/chat/not-a-uuid/read", nil)
	req.Header.Set("Authorization", bearerToken(t, tokenManager, uuid.New(), domain.RoleStudent))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, stdhttp.StatusBadRequest, recorder.Code)
	svc.AssertNotCalled(t, "MarkMessagesRead", mock.Anything, mock.Anything, mock.Anything)
}
