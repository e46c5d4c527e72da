package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// ChatService implements the business logic for concern chat threads.
type ChatService struct {
	chatRepo    ports.ChatRepository
	concernRepo ports.ConcernRepository
	userRepo    ports.UserRepository
	broadcaster ports.EventBroadcaster
}

// Ensure implementation matches the interface.
var _ ports.ChatService = (*ChatService)(nil)

// NewChatService creates a new service for chat logic.
func NewChatService(
	chatRepo ports.ChatRepository,
	concernRepo ports.ConcernRepository,
	userRepo ports.UserRepository,
	broadcaster ports.EventBroadcaster,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		concernRepo: concernRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
	}
}

// accessibleConcern loads a concern and checks the actor may see its thread.
func (s *ChatService) accessibleConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (*domain.Concern, error) {
	concern, err := s.concernRepo.GetByID(ctx, concernID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAccess(actor, concern) {
		return nil, apperrors.ErrForbidden
	}
	return concern, nil
}

// SendMessage appends a message to a concern's thread.
func (s *ChatService) SendMessage(ctx context.Context, params ports.SendMessageParams) (*domain.ChatMessage, error) {
	concern, err := s.accessibleConcern(ctx, params.ConcernID, params.Actor)
	if err != nil {
		return nil, err
	}

	sender, err := s.userRepo.GetByID(ctx, params.Actor.ID)
	if err != nil {
		return nil, err
	}

	message, err := domain.NewChatMessage(domain.ChatMessageParams{
		ConcernID:   concern.ID,
		SenderID:    sender.ID,
		Message:     params.Message,
		Attachments: params.Attachments,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.chatRepo.Create(ctx, message)
	if err != nil {
		return nil, err
	}

	profile := sender.PublicProfile()
	created.Sender = &profile

	s.broadcaster.BroadcastToConcern(concern.ID, domain.Event{
		Type:      domain.EventNewMessage,
		Payload:   domain.NewChatMessageSnapshot(created),
		ConcernID: concern.ID,
	})

	return created, nil
}

// GetMessages retrieves a concern's thread in chronological order.
func (s *ChatService) GetMessages(ctx context.Context, concernID uuid.UUID, actor domain.Actor) ([]*domain.ChatMessage, error) {
	if _, err := s.accessibleConcern(ctx, concernID, actor); err != nil {
		return nil, err
	}

	return s.chatRepo.ListByConcernID(ctx, concernID)
}

// MarkMessagesRead marks every unread message the actor did not send as
// read. Calling it again is a no-op.
func (s *ChatService) MarkMessagesRead(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (int64, error) {
	if _, err := s.accessibleConcern(ctx, concernID, actor); err != nil {
		return 0, err
	}

	return s.chatRepo.MarkAllRead(ctx, concernID, actor.ID)
}
