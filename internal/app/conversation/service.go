package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/williskipsjr/SoulSync-Beta/internal/app/classifier"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/records"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
)

const titleMaxRunes = 50

// Classifier picks the assistant reply for a user message.
type Classifier interface {
	Classify(message string) classifier.Result
}

// EmergencyNotifier relays a crisis alert for a user. It reports success and
// never fails the caller.
type EmergencyNotifier interface {
	NotifyEmergency(ctx context.Context, userID domain.UserID) (sent bool, message string)
}

type Service struct {
	conversations *records.Collection[domain.Conversation]
	classifier    Classifier
	emergency     EmergencyNotifier
	now           func() time.Time
	newID         func() string
}

// NewService wires the chat flow. emergency may be nil, which disables
// notifying on crisis messages.
func NewService(
	conversations *records.Collection[domain.Conversation],
	cls Classifier,
	emergency EmergencyNotifier,
) *Service {
	if cls == nil {
		cls = classifier.Default()
	}

	return &Service{
		conversations: conversations,
		classifier:    cls,
		emergency:     emergency,
		now:           time.Now,
		newID:         uuid.NewString,
	}
}

type AppendExchangeInput struct {
	ConversationID   domain.ConversationID // empty: start a new conversation
	UserID           domain.UserID
	UserMessage      string
	AssistantMessage string
	// UserSentAt is when the user message was captured; zero means now.
	UserSentAt time.Time
}

// AppendExchange stores one user/assistant message pair, creating the
// conversation on first use, and returns its id.
func (s *Service) AppendExchange(ctx context.Context, in AppendExchangeInput) (domain.ConversationID, error) {
	if in.UserID == "" {
		return "", fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}

	convID := in.ConversationID
	if convID == "" {
		convID = domain.ConversationID(s.newID())
	}

	log := observability.LoggerFromContext(ctx).With(
		"conversation_id", convID,
		"user_id", in.UserID,
	)

	userAt := in.UserSentAt
	if userAt.IsZero() {
		userAt = s.now()
	}
	userMsg := domain.Message{
		Role:      domain.RoleUser,
		Content:   in.UserMessage,
		Timestamp: userAt.UTC(),
	}

	err := s.conversations.Update(ctx, func(all []domain.Conversation) ([]domain.Conversation, error) {
		now := s.now().UTC()
		assistantMsg := domain.Message{
			Role:      domain.RoleAssistant,
			Content:   in.AssistantMessage,
			Timestamp: now,
		}

		for i := range all {
			if all[i].ID != convID {
				continue
			}
			if all[i].UserID != in.UserID {
				return nil, fmt.Errorf("conversation %s: %w", convID, domain.ErrNotFound)
			}
			all[i].Messages = append(all[i].Messages, userMsg, assistantMsg)
			all[i].UpdatedAt = now
			return all, nil
		}

		log.Info("creating conversation")
		return append(all, domain.Conversation{
			ID:        convID,
			UserID:    in.UserID,
			Title:     titleFrom(in.UserMessage),
			Messages:  []domain.Message{userMsg, assistantMsg},
			CreatedAt: now,
			UpdatedAt: now,
		}), nil
	})
	if err != nil {
		log.Error("failed to append exchange", "error", err)
		return "", err
	}

	return convID, nil
}

type ChatInput struct {
	Message        string
	ConversationID domain.ConversationID
	UserID         domain.UserID // empty: reply without persisting
}

type ChatOutput struct {
	Response          string
	Category          classifier.Category
	CrisisDetected    bool
	ConversationID    domain.ConversationID
	EmergencyNotified bool
}

// Chat classifies the message, persists the exchange when a user is known
// and, on a crisis message, relays an alert to the user's emergency contact.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("message is required: %w", domain.ErrInvalidInput)
	}

	receivedAt := s.now()
	result := s.classifier.Classify(in.Message)

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"category", result.Category,
	)

	out := &ChatOutput{
		Response:       result.Response,
		Category:       result.Category,
		CrisisDetected: result.Crisis,
		ConversationID: in.ConversationID,
	}

	if in.UserID == "" {
		if out.ConversationID == "" {
			out.ConversationID = domain.ConversationID(s.newID())
		}
		log.Info("chat reply without persistence")
		return out, nil
	}

	convID, err := s.AppendExchange(ctx, AppendExchangeInput{
		ConversationID:   in.ConversationID,
		UserID:           in.UserID,
		UserMessage:      in.Message,
		AssistantMessage: result.Response,
		UserSentAt:       receivedAt,
	})
	if err != nil {
		return nil, err
	}
	out.ConversationID = convID

	if result.Crisis && s.emergency != nil {
		sent, msg := s.emergency.NotifyEmergency(ctx, in.UserID)
		out.EmergencyNotified = sent
		if !sent {
			log.Warn("crisis detected but emergency contact not notified", "reason", msg)
		}
	}

	log.Info("chat completed", "conversation_id", convID, "crisis", result.Crisis)
	return out, nil
}

// List returns the user's conversations, most recently updated first.
func (s *Service) List(ctx context.Context, userID domain.UserID) []domain.Conversation {
	out := []domain.Conversation{}
	for _, c := range s.conversations.Load(ctx) {
		if c.UserID == userID {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *Service) Get(ctx context.Context, userID domain.UserID, id domain.ConversationID) (*domain.Conversation, error) {
	for _, c := range s.conversations.Load(ctx) {
		if c.ID == id && c.UserID == userID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
}

// Delete removes the (user, conversation) pair. Deleting a missing pair is a
// no-op and still succeeds.
func (s *Service) Delete(ctx context.Context, userID domain.UserID, id domain.ConversationID) error {
	err := s.conversations.Update(ctx, func(all []domain.Conversation) ([]domain.Conversation, error) {
		kept := make([]domain.Conversation, 0, len(all))
		for _, c := range all {
			if c.ID == id && c.UserID == userID {
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == len(all) {
			return nil, errNothingChanged
		}
		return kept, nil
	})
	if errors.Is(err, errNothingChanged) {
		return nil
	}
	return err
}

// Rename sets a new title without touching the message history.
func (s *Service) Rename(ctx context.Context, userID domain.UserID, id domain.ConversationID, title string) (*domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}

	var renamed domain.Conversation
	err := s.conversations.Update(ctx, func(all []domain.Conversation) ([]domain.Conversation, error) {
		for i := range all {
			if all[i].ID == id && all[i].UserID == userID {
				all[i].Title = title
				all[i].UpdatedAt = s.now().UTC()
				renamed = all[i]
				return all, nil
			}
		}
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &renamed, nil
}

// errNothingChanged aborts an Update without writing.
var errNothingChanged = errors.New("nothing changed")

func titleFrom(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	if utf8.RuneCountInString(title) <= titleMaxRunes {
		return title
	}
	return string([]rune(title)[:titleMaxRunes]) + "..."
}
