package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/williskipsjr/SoulSync-Beta/internal/app/records"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

// MaxListed caps List.
const MaxListed = 1000

type Service struct {
	checks *records.Collection[domain.StatusCheck]
	now    func() time.Time
	newID  func() string
}

func NewService(checks *records.Collection[domain.StatusCheck]) *Service {
	return &Service{
		checks: checks,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *Service) Create(ctx context.Context, clientName string) (*domain.StatusCheck, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, fmt.Errorf("client_name is required: %w", domain.ErrInvalidInput)
	}

	check := domain.StatusCheck{
		ID:         s.newID(),
		ClientName: clientName,
		Timestamp:  s.now().UTC(),
	}
	err := s.checks.Update(ctx, func(all []domain.StatusCheck) ([]domain.StatusCheck, error) {
		return append(all, check), nil
	})
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// List returns stored checks in insertion order, at most MaxListed.
func (s *Service) List(ctx context.Context) []domain.StatusCheck {
	all := s.checks.Load(ctx)
	if len(all) > MaxListed {
		all = all[:MaxListed]
	}
	return all
}
