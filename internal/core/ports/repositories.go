package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
)

// ConcernFilter narrows List queries. Nil fields mean "no filter";
// Search matches title or ticket code case-insensitively.
type ConcernFilter struct {
	Status     *domain.ConcernStatus
	Category   *domain.Category
	Severity   *domain.Severity
	Campus     *domain.Campus
	StudentID  *uuid.UUID
	AssignedTo *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

// ConcernRepository persists concerns, their timelines and attachments.
// Create assigns the ticket code from the database sequence.
type ConcernRepository interface {
	Create(ctx context.Context, concern *domain.Concern) (*domain.Concern, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Concern, error)
	Update(ctx context.Context, concern *domain.Concern) (*domain.Concern, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ConcernFilter) ([]*domain.Concern, error)
	Stats(ctx context.Context) (*domain.ConcernStats, error)
}

// ChatRepository persists chat messages. Messages are immutable except for
// the read flag, which MarkAllRead flips in bulk for everything the reader
// did not send.
type ChatRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error)
	ListByConcernID(ctx context.Context, concernID uuid.UUID) ([]*domain.ChatMessage, error)
	MarkAllRead(ctx context.Context, concernID, readerID uuid.UUID) (int64, error)
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   *domain.Role
	Campus *domain.Campus
	Search string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}
