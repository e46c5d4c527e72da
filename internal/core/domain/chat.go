package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
)

const (
	MaxMessageLength   = 1000
	MaxChatAttachments = 3
)

// ChatMessage belongs to exactly one concern. Messages are immutable once
// created except for the read flag, which only moves false -> true.
type ChatMessage struct {
	ID          uuid.UUID
	ConcernID   uuid.UUID
	SenderID    uuid.UUID
	Sender      *PublicProfile // populated for responses and broadcasts
	Message     string
	Attachments []Attachment
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// ChatMessageParams holds validated input for appending a message.
type ChatMessageParams struct {
	ConcernID   uuid.UUID
	SenderID    uuid.UUID
	Message     string
	Attachments []Attachment
}

// Validate checks the message parameters against the field constraints.
func (p *ChatMessageParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Message == "" {
		errs.Add("message", "Message is required")
	} else if len(p.Message) > MaxMessageLength {
		errs.Add("message", fmt.Sprintf("Message cannot exceed %d characters", MaxMessageLength))
	}

	if p.ConcernID == uuid.Nil {
		errs.Add("concernId", "Concern ID is required")
	}
	if p.SenderID == uuid.Nil {
		errs.Add("senderId", "Sender ID is required")
	}

	if len(p.Attachments) > MaxChatAttachments {
		errs.Add("attachments", fmt.Sprintf("At most %d attachments are allowed", MaxChatAttachments))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewChatMessage creates a validated, unread chat message.
func NewChatMessage(params ChatMessageParams) (*ChatMessage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &ChatMessage{
		ID:          uuid.New(),
		ConcernID:   params.ConcernID,
		SenderID:    params.SenderID,
		Message:     params.Message,
		Attachments: params.Attachments,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
