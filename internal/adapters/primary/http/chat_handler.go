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

// ChatHandler handles HTTP requests for concern chat threads
type ChatHandler struct {
	chatService  ports.ChatService
	fileStore    ports.FileStore
	maxFileSize  int64
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	chatService ports.ChatService,
	fileStore ports.FileStore,
	maxFileSize int64,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		fileStore:    fileStore,
		maxFileSize:  maxFileSize,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "chat"),
	}
}

// RegisterRoutes sets up the routing for all chat endpoints.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{concernID}", func(r chi.Router) {
		r.Get("/", h.HandleGetMessages)
		r.Post("/", h.HandleSendMessage)
		r.Put("/read", h.HandleMarkRead)
	})
}

// MarkReadResponse reports how many messages a read receipt covered.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// HandleGetMessages handles GET /chat/{concernID}
func (h *ChatHandler) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	messages, err := h.chatService.GetMessages(r.Context(), concernID, claims.Actor())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	snapshots := make([]domain.ChatMessageSnapshot, 0, len(messages))
	for _, message := range messages {
		snapshots = append(snapshots, domain.NewChatMessageSnapshot(message))
	}

	WriteList(w, snapshots)
}

// HandleSendMessage handles POST /chat/{concernID}. The body is multipart
// form data so attachments can ride along with the message.
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Request body must be multipart form data")
		return
	}

	attachments, err := parseAttachments(r, h.fileStore, "attachments", domain.MaxChatAttachments, h.maxFileSize)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.SendMessageParams{
		ConcernID:   concernID,
		Actor:       claims.Actor(),
		Message:     r.FormValue("message"),
		Attachments: attachments,
	}

	message, err := h.chatService.SendMessage(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("chat message sent",
		"concern_id", concernID,
		"message_id", message.ID,
		"user_id", claims.UserID,
	)

	WriteCreated(w, "Message sent", domain.NewChatMessageSnapshot(message))
}

// HandleMarkRead handles PUT /chat/{concernID}/read
func (h *ChatHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	updated, err := h.chatService.MarkMessagesRead(r.Context(), concernID, claims.Actor())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccessMessage(w, "Messages marked as read", MarkReadResponse{Updated: updated})
}

// getClaims extracts and validates user claims from the request context
func (h *ChatHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}
	return claims, true
}

// parseConcernID extracts and validates the concern ID from the URL
func (h *ChatHandler) parseConcernID(r *http.Request) (uuid.UUID, error) {
	concernID, err := uuid.Parse(chi.URLParam(r, "concernID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("concernID", false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return concernID, nil
}
