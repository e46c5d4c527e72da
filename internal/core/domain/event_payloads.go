package domain

import (
	"time"

	"github.com/google/uuid"
)

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	value := id.String()
	return &value
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.UTC().Format(time.RFC3339)
	return &value
}

// TimelineEntrySnapshot matches the API response shape for timeline entries.
type TimelineEntrySnapshot struct {
	Status    string  `json:"status"`
	UpdatedBy *string `json:"updatedBy"`
	Comment   string  `json:"comment,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// ConcernSnapshot matches the API response shape for concerns.
type ConcernSnapshot struct {
	ID          string                  `json:"id"`
	TicketCode  string                  `json:"ticketId"`
	StudentID   string                  `json:"studentId"`
	AssignedTo  *string                 `json:"assignedTo"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Severity    string                  `json:"severity"`
	Status      string                  `json:"status"`
	IsAnonymous bool                    `json:"isAnonymous"`
	Campus      string                  `json:"campus,omitempty"`
	Attachments []Attachment            `json:"attachments"`
	Timeline    []TimelineEntrySnapshot `json:"timeline"`
	Rating      *int                    `json:"rating,omitempty"`
	Feedback    string                  `json:"feedback,omitempty"`
	ResolvedAt  *string                 `json:"resolvedAt,omitempty"`
	ClosedAt    *string                 `json:"closedAt,omitempty"`
	CreatedAt   string                  `json:"createdAt"`
	UpdatedAt   *string                 `json:"updatedAt,omitempty"`
}

// ChatMessageSnapshot matches the API response shape for chat messages.
type ChatMessageSnapshot struct {
	ID          string         `json:"id"`
	ConcernID   string         `json:"concernId"`
	Sender      *PublicProfile `json:"sender"`
	Message     string         `json:"message"`
	Attachments []Attachment   `json:"attachments"`
	IsRead      bool           `json:"isRead"`
	ReadAt      *string        `json:"readAt,omitempty"`
	CreatedAt   string         `json:"createdAt"`
}

// StatusUpdatePayload is broadcast to a concern room on every transition.
type StatusUpdatePayload struct {
	ConcernID  string  `json:"concernId"`
	TicketCode string  `json:"ticketId"`
	Status     string  `json:"status"`
	UpdatedBy  *string `json:"updatedBy"`
	Comment    string  `json:"comment,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// NewConcernSnapshot builds a concern snapshot from a domain concern.
func NewConcernSnapshot(concern *Concern) ConcernSnapshot {
	timeline := make([]TimelineEntrySnapshot, 0, len(concern.Timeline))
	for _, entry := range concern.Timeline {
		timeline = append(timeline, TimelineEntrySnapshot{
			Status:    string(entry.Status),
			UpdatedBy: uuidString(entry.UpdatedBy),
			Comment:   entry.Comment,
			Timestamp: entry.Timestamp.UTC().Format(time.RFC3339),
		})
	}

	attachments := concern.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	var updatedAt *string
	if concern.UpdatedAt != nil {
		value := concern.UpdatedAt.UTC().Format(time.RFC3339)
		updatedAt = &value
	}

	return ConcernSnapshot{
		ID:          concern.ID.String(),
		TicketCode:  concern.TicketCode,
		StudentID:   concern.StudentID.String(),
		AssignedTo:  uuidString(concern.AssignedTo),
		Title:       concern.Title,
		Description: concern.Description,
		Category:    string(concern.Category),
		Severity:    string(concern.Severity),
		Status:      string(concern.Status),
		IsAnonymous: concern.IsAnonymous,
		Campus:      string(concern.Campus),
		Attachments: attachments,
		Timeline:    timeline,
		Rating:      concern.Rating,
		Feedback:    concern.Feedback,
		ResolvedAt:  timeString(concern.ResolvedAt),
		ClosedAt:    timeString(concern.ClosedAt),
		CreatedAt:   concern.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   updatedAt,
	}
}

// NewChatMessageSnapshot builds a message snapshot from a domain message.
func NewChatMessageSnapshot(message *ChatMessage) ChatMessageSnapshot {
	attachments := message.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	return ChatMessageSnapshot{
		ID:          message.ID.String(),
		ConcernID:   message.ConcernID.String(),
		Sender:      message.Sender,
		Message:     message.Message,
		Attachments: attachments,
		IsRead:      message.IsRead,
		ReadAt:      timeString(message.ReadAt),
		CreatedAt:   message.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewStatusUpdatePayload builds the broadcast payload from the concern's
// latest timeline entry.
func NewStatusUpdatePayload(concern *Concern) StatusUpdatePayload {
	payload := StatusUpdatePayload{
		ConcernID:  concern.ID.String(),
		TicketCode: concern.TicketCode,
		Status:     string(concern.Status),
	}

	if entry := concern.LastTimelineEntry(); entry != nil {
		payload.UpdatedBy = uuidString(entry.UpdatedBy)
		payload.Comment = entry.Comment
		payload.Timestamp = entry.Timestamp.UTC().Format(time.RFC3339)
	}

	return payload
}
