package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/concernrise/concern-backend/internal/core/domain"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockConcernRepository is a mock implementation of ports.ConcernRepository
type MockConcernRepository struct {
	mock.Mock
}

func NewMockConcernRepository() *MockConcernRepository {
	return &MockConcernRepository{}
}

func (m *MockConcernRepository) Create(ctx context.Context, concern *domain.Concern) (*domain.Concern, error) {
	args := m.Called(ctx, concern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Concern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernRepository) Update(ctx context.Context, concern *domain.Concern) (*domain.Concern, error) {
	args := m.Called(ctx, concern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConcernRepository) List(ctx context.Context, filter ports.ConcernFilter) ([]*domain.Concern, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Concern), args.Error(1)
}

func (m *MockConcernRepository) Stats(ctx context.Context) (*domain.ConcernStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConcernStats), args.Error(1)
}

// MockChatRepository is a mock implementation of ports.ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

func (m *MockChatRepository) Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) ListByConcernID(ctx context.Context, concernID uuid.UUID) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, concernID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockChatRepository) MarkAllRead(ctx context.Context, concernID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, concernID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) BroadcastToConcern(concernID uuid.UUID, event domain.Event) {
	m.Called(concernID, event)
}

func (m *MockEventBroadcaster) NotifyUser(userID uuid.UUID, event domain.Event) {
	m.Called(userID, event)
}

// MockConcernService is a mock implementation of ports.ConcernService
type MockConcernService struct {
	mock.Mock
}

func NewMockConcernService() *MockConcernService {
	return &MockConcernService{}
}

func (m *MockConcernService) CreateConcern(ctx context.Context, params ports.CreateConcernParams) (*domain.Concern, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernService) GetConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (*domain.Concern, error) {
	args := m.Called(ctx, concernID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernService) ListConcerns(ctx context.Context, params ports.ListConcernsParams) ([]*domain.Concern, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Concern), args.Error(1)
}

func (m *MockConcernService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Concern, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernService) AssignConcern(ctx context.Context, params ports.AssignConcernParams) (*domain.Concern, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernService) RateConcern(ctx context.Context, params ports.RateConcernParams) (*domain.Concern, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concern), args.Error(1)
}

func (m *MockConcernService) DeleteConcern(ctx context.Context, concernID uuid.UUID, actor domain.Actor) error {
	args := m.Called(ctx, concernID, actor)
	return args.Error(0)
}

func (m *MockConcernService) GetStats(ctx context.Context, actor domain.Actor) (*domain.ConcernStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConcernStats), args.Error(1)
}

func (m *MockConcernService) Shutdown() {
	m.Called()
}

// MockChatService is a mock implementation of ports.ChatService
type MockChatService struct {
	mock.Mock
}

func NewMockChatService() *MockChatService {
	return &MockChatService{}
}

func (m *MockChatService) SendMessage(ctx context.Context, params ports.SendMessageParams) (*domain.ChatMessage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *MockChatService) GetMessages(ctx context.Context, concernID uuid.UUID, actor domain.Actor) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, concernID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockChatService) MarkMessagesRead(ctx context.Context, concernID uuid.UUID, actor domain.Actor) (int64, error) {
	args := m.Called(ctx, concernID, actor)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthService is a mock implementation of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, params domain.UserRegistrationParams) (*domain.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockUserService is a mock implementation of ports.UserService
type MockUserService struct {
	mock.Mock
}

func NewMockUserService() *MockUserService {
	return &MockUserService{}
}

func (m *MockUserService) ListUsers(ctx context.Context, params ports.ListUsersParams) ([]*domain.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID, actor domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, userID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, params ports.UpdateUserParams) (*domain.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID uuid.UUID, actor domain.Actor) error {
	args := m.Called(ctx, userID, actor)
	return args.Error(0)
}

func (m *MockUserService) ToggleUserStatus(ctx context.Context, userID uuid.UUID, actor domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, userID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// StubTransactionManager is a pass-through ports.TransactionManager that
// runs the function directly without a real transaction.
type StubTransactionManager struct{}

func NewStubTransactionManager() *StubTransactionManager {
	return &StubTransactionManager{}
}

func (s *StubTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
