// Package emergency relays crisis alerts to a user's emergency contact.
package emergency

import (
	"context"
	"fmt"
	"time"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
)

// UserLookup resolves the user whose contact should be alerted.
type UserLookup interface {
	Get(ctx context.Context, id domain.UserID) (*domain.User, error)
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Service struct {
	users    UserLookup
	notifier domain.Notifier
	now      func() time.Time
}

// NewService builds the relay. notifier may be nil when no channel is
// configured; every notify call then reports failure.
func NewService(users UserLookup, notifier domain.Notifier) *Service {
	return &Service{
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// Notify sends the alert. It never returns an error: every failure is
// logged and reported as Success=false.
func (s *Service) Notify(ctx context.Context, userID domain.UserID) Result {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	fail := func(msg string, cause error) Result {
		log.Warn("emergency notification not sent",
			"reason", msg,
			"error", fmt.Errorf("%w: %v", domain.ErrNotificationUnavailable, cause),
		)
		return Result{Success: false, Message: msg}
	}

	if userID == "" {
		return fail("user id is required", domain.ErrInvalidInput)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return fail("user not found", err)
	}
	if user.EmergencyContact == nil || user.EmergencyContact.TelegramChatID == "" {
		return fail("no emergency contact configured", domain.ErrNotFound)
	}
	if s.notifier == nil || !s.notifier.Configured() {
		return fail("notification channel not configured", domain.ErrNotificationUnavailable)
	}

	if err := s.notifier.Notify(ctx, user.EmergencyContact.TelegramChatID, s.alertText(user)); err != nil {
		return fail("failed to deliver notification", err)
	}

	log.Info("emergency contact notified")
	return Result{Success: true, Message: "Emergency contact notified"}
}

// NotifyEmergency adapts Notify for the chat flow.
func (s *Service) NotifyEmergency(ctx context.Context, userID domain.UserID) (bool, string) {
	res := s.Notify(ctx, userID)
	return res.Success, res.Message
}

func (s *Service) alertText(u *domain.User) string {
	name := u.Name
	if name == "" {
		name = "A SoulSync user"
	}
	return fmt.Sprintf(
		"🚨 EMERGENCY ALERT\n\n%s has triggered an emergency alert from SoulSync.\n\nThey may need immediate support. Please check on them.\n\nTime: %s",
		name, s.now().UTC().Format(time.RFC1123),
	)
}
