package email

import (
	"context"
	"log/slog"

	"github.com/concernrise/concern-backend/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that mocks sending emails.
// It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

// NewMockSMTPNotifier creates a new mock notifier. It requires a
// UserRepository to resolve recipients when only an ID is given.
func NewMockSMTPNotifier(userRepo ports.UserRepository, logger *slog.Logger) ports.Notifier {
	return &MockSMTPNotifier{
		userRepo: userRepo,
		logger:   logger.With("component", "email_notifier"),
	}
}

// Notify logs the notification to the console instead of sending an email.
// It is best-effort: failures are logged and swallowed.
func (n *MockSMTPNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	// Use a fresh context in case the original request context is cancelled.
	notifyCtx := context.Background()

	toEmail := params.RecipientEmail
	toName := ""
	if toEmail == "" {
		user, err := n.userRepo.GetByID(notifyCtx, params.RecipientUserID)
		if err != nil {
			n.logger.Error("failed to get user for notification",
				"user_id", params.RecipientUserID,
				"error", err,
			)
			return
		}
		toEmail = user.Email
		toName = user.FullName
	}

	n.logger.Info("mock email sent",
		"to_name", toName,
		"to_email", toEmail,
		"subject", params.Subject,
		"ticket_code", params.TicketCode,
	)
}
