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

const maxConcernsPerPage = 100

// ConcernHandler handles HTTP requests for concerns
type ConcernHandler struct {
	concernService ports.ConcernService
	fileStore      ports.FileStore
	maxFileSize    int64
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewConcernHandler creates a new concern handler
func NewConcernHandler(
	concernService ports.ConcernService,
	fileStore ports.FileStore,
	maxFileSize int64,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ConcernHandler {
	return &ConcernHandler{
		concernService: concernService,
		fileStore:      fileStore,
		maxFileSize:    maxFileSize,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "concern"),
	}
}

// RegisterRoutes sets up the routing for all concern endpoints.
func (h *ConcernHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListConcerns)
	r.Post("/", h.HandleCreateConcern)
	r.Get("/stats", h.HandleGetStats)

	r.Route("/{concernID}", func(r chi.Router) {
		r.Get("/", h.HandleGetConcern)
		r.Delete("/", h.HandleDeleteConcern)
		r.Put("/status", h.HandleUpdateStatus)
		r.Put("/assign", h.HandleAssignConcern)
		r.Put("/rate", h.HandleRateConcern)
	})
}

// --- Request DTOs ---

// UpdateStatusRequest defines the expected JSON body for status updates
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// Validate validates the update status request
func (r *UpdateStatusRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("status", r.Status).
		Custom("status", r.Status == "" || domain.ConcernStatus(r.Status).IsValid(), "Must be a known status")

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// AssignConcernRequest defines the expected JSON body for assigning a concern
type AssignConcernRequest struct {
	MentorID string `json:"mentorId"`
}

// Validate validates the assign concern request
func (r *AssignConcernRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("mentorId", r.MentorID).
		UUID("mentorId", r.MentorID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// RateConcernRequest defines the expected JSON body for rating a concern
type RateConcernRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// Validate validates the rate concern request
func (r *RateConcernRequest) Validate() error {
	v := validation.NewValidator()

	v.Range("rating", r.Rating, domain.MinRating, domain.MaxRating)
	v.MaxLength("feedback", r.Feedback, domain.MaxFeedbackLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// --- Handlers ---

// HandleCreateConcern handles POST /concerns. The body is multipart form
// data so attachments can ride along with the fields.
func (h *ConcernHandler) HandleCreateConcern(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Request body must be multipart form data")
		return
	}

	attachments, err := parseAttachments(r, h.fileStore, "attachments", domain.MaxConcernAttachments, h.maxFileSize)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateConcernParams{
		Actor:       claims.Actor(),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    domain.Category(r.FormValue("category")),
		Severity:    domain.Severity(r.FormValue("severity")),
		IsAnonymous: validation.ParseBoolFormValue(r.FormValue("isAnonymous")),
		Campus:      domain.Campus(r.FormValue("campus")),
		Attachments: attachments,
	}

	concern, err := h.concernService.CreateConcern(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("concern created",
		"concern_id", concern.ID,
		"ticket_code", concern.TicketCode,
		"user_id", claims.UserID,
	)

	WriteCreated(w, "Concern submitted successfully", domain.NewConcernSnapshot(concern))
}

// HandleListConcerns handles GET /concerns
func (h *ConcernHandler) HandleListConcerns(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxConcernsPerPage)

	v := validation.NewValidator()
	params := ports.ListConcernsParams{
		Actor:  claims.Actor(),
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.ConcernStatus(raw)
		v.Custom("status", status.IsValid(), "Must be a known status")
		params.Status = &status
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category := domain.Category(raw)
		v.Custom("category", category.IsValid(), "Must be a known category")
		params.Category = &category
	}
	if raw := r.URL.Query().Get("severity"); raw != "" {
		severity := domain.Severity(raw)
		v.Custom("severity", severity.IsValid(), "Must be a known severity")
		params.Severity = &severity
	}
	if raw := r.URL.Query().Get("campus"); raw != "" {
		campus := domain.Campus(raw)
		v.Custom("campus", campus.IsValid(), "Must be a known campus")
		params.Campus = &campus
	}
	params.Search = r.URL.Query().Get("search")

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	concerns, err := h.concernService.ListConcerns(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	snapshots := make([]domain.ConcernSnapshot, 0, len(concerns))
	for _, concern := range concerns {
		snapshots = append(snapshots, domain.NewConcernSnapshot(concern))
	}

	WriteList(w, snapshots)
}

// HandleGetConcern handles GET /concerns/{concernID}
func (h *ConcernHandler) HandleGetConcern(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	concern, err := h.concernService.GetConcern(r.Context(), concernID, claims.Actor())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, domain.NewConcernSnapshot(concern))
}

// HandleUpdateStatus handles PUT /concerns/{concernID}/status
func (h *ConcernHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateStatusParams{
		ConcernID: concernID,
		Actor:     claims.Actor(),
		Status:    domain.ConcernStatus(req.Status),
		Comment:   req.Comment,
	}

	concern, err := h.concernService.UpdateStatus(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("concern status updated",
		"concern_id", concernID,
		"new_status", req.Status,
		"user_id", claims.UserID,
	)

	WriteSuccessMessage(w, "Status updated successfully", domain.NewConcernSnapshot(concern))
}

// HandleAssignConcern handles PUT /concerns/{concernID}/assign
func (h *ConcernHandler) HandleAssignConcern(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[AssignConcernRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	mentorID, err := uuid.Parse(req.MentorID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.AssignConcernParams{
		ConcernID: concernID,
		Actor:     claims.Actor(),
		MentorID:  mentorID,
	}

	concern, err := h.concernService.AssignConcern(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("concern assigned",
		"concern_id", concernID,
		"mentor_id", mentorID,
		"user_id", claims.UserID,
	)

	WriteSuccessMessage(w, "Concern assigned successfully", domain.NewConcernSnapshot(concern))
}

// HandleRateConcern handles PUT /concerns/{concernID}/rate
func (h *ConcernHandler) HandleRateConcern(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[RateConcernRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.RateConcernParams{
		ConcernID: concernID,
		Actor:     claims.Actor(),
		Rating:    req.Rating,
		Feedback:  req.Feedback,
	}

	concern, err := h.concernService.RateConcern(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccessMessage(w, "Thank you for your feedback", domain.NewConcernSnapshot(concern))
}

// HandleDeleteConcern handles DELETE /concerns/{concernID}
func (h *ConcernHandler) HandleDeleteConcern(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	concernID, err := h.parseConcernID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.concernService.DeleteConcern(r.Context(), concernID, claims.Actor()); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("concern deleted",
		"concern_id", concernID,
		"user_id", claims.UserID,
	)

	WriteSuccessMessage(w, "Concern deleted successfully", nil)
}

// HandleGetStats handles GET /concerns/stats
func (h *ConcernHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	stats, err := h.concernService.GetStats(r.Context(), claims.Actor())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, stats)
}

// --- Helper methods ---

// getClaims extracts and validates user claims from the request context
func (h *ConcernHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}
	return claims, true
}

// parseConcernID extracts and validates the concern ID from the URL
func (h *ConcernHandler) parseConcernID(r *http.Request) (uuid.UUID, error) {
	concernID, err := uuid.Parse(chi.URLParam(r, "concernID"))
	if err != nil {
		v := validation.NewValidator()
		v.Custom("concernID", false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return concernID, nil
}
