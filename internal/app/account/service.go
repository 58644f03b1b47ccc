package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/williskipsjr/SoulSync-Beta/internal/app/records"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
)

// bcrypt rejects longer passwords.
const maxPasswordBytes = 72

type Service struct {
	users    *records.Collection[domain.User]
	hashCost int
	now      func() time.Time
	newID    func() string
}

func NewService(users *records.Collection[domain.User]) *Service {
	return &Service{
		users:    users,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithHashCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a user. Emails are unique, compared case-insensitively.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrInvalidInput)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("password longer than %d bytes: %w", maxPasswordBytes, domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           domain.UserID(s.newID()),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	err = s.users.Update(ctx, func(all []domain.User) ([]domain.User, error) {
		for _, u := range all {
			if u.Email == email {
				return nil, fmt.Errorf("email %s already registered: %w", email, domain.ErrConflict)
			}
		}
		return append(all, user), nil
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("user registered", "user_id", user.ID)
	return &user, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)

	for _, u := range s.users.Load(ctx) {
		if u.Email != email {
			continue
		}
		err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			observability.LoggerFromContext(ctx).Warn("stored password hash unusable", "user_id", u.ID, "error", err)
		}
		break
	}

	return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
}

func (s *Service) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	for _, u := range s.users.Load(ctx) {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

// Patch applies the allow-listed fields of p to the user.
func (s *Service) Patch(ctx context.Context, id domain.UserID, p domain.UserPatch) (*domain.User, error) {
	var updated domain.User
	err := s.users.Update(ctx, func(all []domain.User) ([]domain.User, error) {
		for i := range all {
			if all[i].ID != id {
				continue
			}
			if p.Name != nil {
				all[i].Name = strings.TrimSpace(*p.Name)
			}
			if p.EmergencyContact != nil {
				contact := *p.EmergencyContact
				all[i].EmergencyContact = &contact
			}
			if p.OnboardingCompleted != nil {
				all[i].OnboardingCompleted = *p.OnboardingCompleted
			}
			updated = all[i]
			return all, nil
		}
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
