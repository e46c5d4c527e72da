package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/concernrise/concern-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, params domain.UserRegistrationParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// CreateConcernParams defines the required input for submitting a concern.
type CreateConcernParams struct {
	Actor       domain.Actor
	Title       string
	Description string
	Category    domain.Category
	Severity    domain.Severity
	IsAnonymous bool
	Campus      domain.Campus
	Attachments []domain.Attachment
}

// UpdateStatusParams defines the input for changing a concern's status.
type UpdateStatusParams struct {
	ConcernID uuid.UUID
	Actor     domain.Actor
	Status    domain.ConcernStatus
	Comment   string
}

// AssignConcernParams defines the input for assigning a concern to a mentor.
type AssignConcernParams struct {
	ConcernID uuid.UUID
	Actor     domain.Actor
	MentorID  uuid.UUID
}

// RateConcernParams defines the input for rating a resolved concern.
type RateConcernParams struct {
	ConcernID uuid.UUID
	Actor     domain.Actor
	Rating    int
	Feedback  string
}

// ListConcernsParams defines the input for listing concerns. The filter is
// further narrowed by the actor's role before it reaches the repository.
type ListConcernsParams struct {
	Actor    domain.Actor
	Status   *domain.ConcernStatus
	Category *domain.Category
	Severity *domain.Severity
	Campus   *domain.Campus
	Search   string
	Limit    int
	Offset   int
}

// ConcernService defines the core business operations for managing concerns.
type ConcernService interface {
	CreateConcern(ctx context.Context, params CreateConcernParams) (*domain.Concern, error)
	GetConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (*domain.Concern, error)
	ListConcerns(ctx context.Context, params ListConcernsParams) ([]*domain.Concern, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (*domain.Concern, error)
	AssignConcern(ctx context.Context, params AssignConcernParams) (*domain.Concern, error)
	RateConcern(ctx context.Context, params RateConcernParams) (*domain.Concern, error)
	DeleteConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) error
	GetStats(ctx context.Context, actor domain.Actor) (*domain.ConcernStats, error)
	Shutdown()
}

// SendMessageParams defines the input for appending a chat message.
type SendMessageParams struct {
	ConcernID   uuid.UUID
	Actor       domain.Actor
	Message     string
	Attachments []domain.Attachment
}

// ChatService defines the port for concern chat threads.
type ChatService interface {
	SendMessage(ctx context.Context, params SendMessageParams) (*domain.ChatMessage, error)
	GetMessages(ctx context.Context, concernID uuid.UUID, actor domain.Actor) ([]*domain.ChatMessage, error)
	MarkMessagesRead(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (int64, error)
}

// UpdateUserParams defines the input for updating a user profile.
type UpdateUserParams struct {
	UserID   uuid.UUID
	Actor    domain.Actor
	FullName *string
	Campus   *domain.Campus
	Batch    *string
	Phone    *string
	Role     *domain.Role
}

// ListUsersParams defines the input for listing users.
type ListUsersParams struct {
	Actor  domain.Actor
	Role   *domain.Role
	Campus *domain.Campus
	Search string
}

// UserService defines the port for user administration.
type UserService interface {
	ListUsers(ctx context.Context, params ListUsersParams) ([]*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID, actor domain.Actor) (*domain.User, error)
	UpdateUser(ctx context.Context, params UpdateUserParams) (*domain.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, actor domain.Actor) error
	ToggleUserStatus(ctx context.Context, userID uuid.UUID, actor domain.Actor) (*domain.User, error)
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	RecipientEmail  string
	Subject         string
	Message         string
	ConcernID       uuid.UUID
	TicketCode      string
}

// Notifier defines the port for sending asynchronous notifications.
// Implementations are best-effort and must never block business operations.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// EventBroadcaster defines the port for real-time fan-out. Delivery is
// at-most-once with no replay for late joiners.
type EventBroadcaster interface {
	BroadcastToConcern(concernID uuid.UUID, event domain.Event)
	NotifyUser(userID uuid.UUID, event domain.Event)
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
