package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// ConcernService implements the concern lifecycle: submission, triage,
// assignment, resolution and rating.
type ConcernService struct {
	concernRepo ports.ConcernRepository
	userRepo    ports.UserRepository
	notifier    ports.Notifier
	broadcaster ports.EventBroadcaster
	wg          sync.WaitGroup
}

var _ ports.ConcernService = (*ConcernService)(nil)

// NewConcernService creates a new concern service
func NewConcernService(
	concernRepo ports.ConcernRepository,
	userRepo ports.UserRepository,
	notifier ports.Notifier,
	broadcaster ports.EventBroadcaster,
) *ConcernService {
	return &ConcernService{
		concernRepo: concernRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

// CreateConcern handles the use case for submitting a new concern
func (s *ConcernService) CreateConcern(ctx context.Context, params ports.CreateConcernParams) (*domain.Concern, error) {
	if params.Actor.Role != domain.RoleStudent {
		return nil, apperrors.ErrForbidden
	}

	student, err := s.userRepo.GetByID(ctx, params.Actor.ID)
	if err != nil {
		return nil, err
	}

	// Campus falls back to the submitting student's campus.
	campus := params.Campus
	if campus == "" {
		campus = student.Campus
	}

	concern, err := domain.NewConcern(domain.ConcernParams{
		StudentID:   params.Actor.ID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Severity:    params.Severity,
		IsAnonymous: params.IsAnonymous,
		Campus:      campus,
		Attachments: params.Attachments,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.concernRepo.Create(ctx, concern)
	if err != nil {
		return nil, err
	}

	s.notifyAsync(ports.NotificationParams{
		RecipientUserID: student.ID,
		RecipientEmail:  student.Email,
		Subject:         fmt.Sprintf("Concern submitted: %s", created.TicketCode),
		Message:         fmt.Sprintf("Your concern '%s' has been received and assigned ticket %s.", created.Title, created.TicketCode),
		ConcernID:       created.ID,
		TicketCode:      created.TicketCode,
	})

	return created, nil
}

// GetConcern retrieves a specific concern with authorization
func (s *ConcernService) GetConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (*domain.Concern, error) {
	concern, err := s.concernRepo.GetByID(ctx, concernID)
	if err != nil {
		return nil, err
	}

	if !domain.CanAccess(actor, concern) {
		return nil, apperrors.ErrForbidden
	}

	return concern, nil
}

// ListConcerns retrieves concerns scoped to the actor's role
func (s *ConcernService) ListConcerns(ctx context.Context, params ports.ListConcernsParams) ([]*domain.Concern, error) {
	filter := ports.ConcernFilter{
		Status:   params.Status,
		Category: params.Category,
		Severity: params.Severity,
		Campus:   params.Campus,
		Search:   params.Search,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}

	// Students see their own concerns, mentors what is assigned to them,
	// admins everything.
	switch params.Actor.Role {
	case domain.RoleStudent:
		actorID := params.Actor.ID
		filter.StudentID = &actorID
	case domain.RoleMentor:
		actorID := params.Actor.ID
		filter.AssignedTo = &actorID
	case domain.RoleAdmin, domain.RoleSuperAdmin:
	default:
		return nil, apperrors.ErrForbidden
	}

	return s.concernRepo.List(ctx, filter)
}

// UpdateStatus records a status change on a concern
func (s *ConcernService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Concern, error) {
	concern, err := s.concernRepo.GetByID(ctx, params.ConcernID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(params.Actor, concern) {
		return nil, apperrors.ErrForbidden
	}

	if err := concern.Transition(params.Status, params.Actor.ID, params.Comment); err != nil {
		return nil, err
	}

	updated, err := s.concernRepo.Update(ctx, concern)
	if err != nil {
		return nil, err
	}

	s.broadcastStatusUpdate(updated)
	s.notifyStatusUpdate(ctx, updated)

	return updated, nil
}

// AssignConcern assigns a concern to a mentor and forces the Assigned status
func (s *ConcernService) AssignConcern(ctx context.Context, params ports.AssignConcernParams) (*domain.Concern, error) {
	if !domain.CanAssign(params.Actor) {
		return nil, apperrors.ErrForbidden
	}

	mentor, err := s.userRepo.GetByID(ctx, params.MentorID)
	if err != nil {
		return nil, err
	}
	if !mentor.Role.IsStaff() {
		return nil, apperrors.NewBadRequestError(apperrors.ErrMentorRequired, "Assignee must be a mentor")
	}

	concern, err := s.concernRepo.GetByID(ctx, params.ConcernID)
	if err != nil {
		return nil, err
	}

	if err := concern.Assign(mentor.ID, mentor.FullName, params.Actor.ID); err != nil {
		return nil, err
	}

	updated, err := s.concernRepo.Update(ctx, concern)
	if err != nil {
		return nil, err
	}

	s.broadcastStatusUpdate(updated)
	s.notifyStatusUpdate(ctx, updated)

	// The mentor gets their own assignment notice, both by mail and as a
	// user-scoped realtime notification.
	s.notifyAsync(ports.NotificationParams{
		RecipientUserID: mentor.ID,
		RecipientEmail:  mentor.Email,
		Subject:         fmt.Sprintf("Concern assigned to you: %s", updated.TicketCode),
		Message:         fmt.Sprintf("You have been assigned concern '%s' (%s).", updated.Title, updated.TicketCode),
		ConcernID:       updated.ID,
		TicketCode:      updated.TicketCode,
	})
	s.broadcaster.NotifyUser(mentor.ID, domain.Event{
		Type: domain.EventNotification,
		Payload: domain.NotificationPayload{
			Kind:      "assignment",
			Title:     "New concern assigned",
			Message:   fmt.Sprintf("Concern %s has been assigned to you.", updated.TicketCode),
			ConcernID: updated.ID,
		},
	})

	return updated, nil
}

// RateConcern records the owning student's rating on a resolved concern
func (s *ConcernService) RateConcern(ctx context.Context, params ports.RateConcernParams) (*domain.Concern, error) {
	concern, err := s.concernRepo.GetByID(ctx, params.ConcernID)
	if err != nil {
		return nil, err
	}

	if !domain.CanRate(params.Actor, concern) {
		return nil, apperrors.ErrForbidden
	}

	if err := concern.Rate(params.Rating, params.Feedback); err != nil {
		return nil, err
	}

	return s.concernRepo.Update(ctx, concern)
}

// DeleteConcern removes a concern and its thread
func (s *ConcernService) DeleteConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) error {
	if !domain.CanDelete(actor) {
		return apperrors.ErrForbidden
	}

	if _, err := s.concernRepo.GetByID(ctx, concernID); err != nil {
		return err
	}

	return s.concernRepo.Delete(ctx, concernID)
}

// GetStats aggregates concern counts for the dashboard
func (s *ConcernService) GetStats(ctx context.Context, actor domain.Actor) (*domain.ConcernStats, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	return s.concernRepo.Stats(ctx)
}

// notifyStatusUpdate emails the owning student about a status change
func (s *ConcernService) notifyStatusUpdate(ctx context.Context, concern *domain.Concern) {
	student, err := s.userRepo.GetByID(ctx, concern.StudentID)
	if err != nil {
		return
	}

	s.notifyAsync(ports.NotificationParams{
		RecipientUserID: student.ID,
		RecipientEmail:  student.Email,
		Subject:         fmt.Sprintf("Concern %s status updated", concern.TicketCode),
		Message:         fmt.Sprintf("The status of your concern '%s' was changed to %s.", concern.Title, concern.Status),
		ConcernID:       concern.ID,
		TicketCode:      concern.TicketCode,
	})
}

// notifyAsync fires a best-effort notification without blocking the caller
func (s *ConcernService) notifyAsync(params ports.NotificationParams) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		s.notifier.Notify(context.Background(), params)
	}()
}

// broadcastStatusUpdate fans the change out to the concern's room
func (s *ConcernService) broadcastStatusUpdate(concern *domain.Concern) {
	s.broadcaster.BroadcastToConcern(concern.ID, domain.Event{
		Type:      domain.EventStatusUpdate,
		Payload:   domain.NewStatusUpdatePayload(concern),
		ConcernID: concern.ID,
	})
}

// Shutdown waits for in-flight notifications to finish.
func (s *ConcernService) Shutdown() {
	s.wg.Wait()
}
