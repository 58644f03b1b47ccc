package mood

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/williskipsjr/SoulSync-Beta/internal/app/records"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
)

const (
	DefaultListLimit = 30
	DefaultStatsDays = 7
	topEmotions      = 5
)

// Service holds the logic of recording and summarising mood entries.
type Service struct {
	entries *records.Collection[domain.MoodEntry]
	now     func() time.Time
	newID   func() string
}

// NewService creates a mood service over the mood_entries collection.
func NewService(entries *records.Collection[domain.MoodEntry]) *Service {
	return &Service{
		entries: entries,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

type CreateEntryInput struct {
	UserID    domain.UserID
	MoodScore int
	Emotions  []string
	Notes     string
}

// Create appends a mood entry. Scores outside 1..10 are rejected.
func (s *Service) Create(ctx context.Context, in CreateEntryInput) (*domain.MoodEntry, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	}
	if in.MoodScore < domain.MinMoodScore || in.MoodScore > domain.MaxMoodScore {
		return nil, fmt.Errorf("mood score %d outside %d-%d: %w",
			in.MoodScore, domain.MinMoodScore, domain.MaxMoodScore, domain.ErrInvalidInput)
	}

	// Tags are stored as given, duplicates included.
	emotions := append(make([]string, 0, len(in.Emotions)), in.Emotions...)

	entry := domain.MoodEntry{
		ID:        s.newID(),
		UserID:    in.UserID,
		MoodScore: in.MoodScore,
		Emotions:  emotions,
		Notes:     in.Notes,
		CreatedAt: s.now().UTC(),
	}

	err := s.entries.Update(ctx, func(all []domain.MoodEntry) ([]domain.MoodEntry, error) {
		return append(all, entry), nil
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("mood entry recorded",
		"user_id", in.UserID,
		"entry_id", entry.ID,
		"mood_score", entry.MoodScore)

	return &entry, nil
}

// List returns the newest `limit` entries for a user, newest first.
// If limit <= 0, DefaultListLimit is used.
func (s *Service) List(ctx context.Context, userID domain.UserID, limit int) []domain.MoodEntry {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	out := s.forUser(ctx, userID, time.Time{})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats summarises a user's entries from the last `days` days.
// days <= 0 includes every entry.
func (s *Service) Stats(ctx context.Context, userID domain.UserID, days int) domain.MoodStats {
	var since time.Time
	if days > 0 {
		since = s.now().Add(-time.Duration(days) * 24 * time.Hour)
	}

	entries := s.forUser(ctx, userID, since)

	stats := domain.MoodStats{
		TotalEntries:   len(entries),
		CommonEmotions: []string{},
	}
	if len(entries) == 0 {
		return stats
	}

	total := 0
	for _, e := range entries {
		total += e.MoodScore
	}
	// Half-way averages round to even (2.25 -> 2.2).
	stats.AverageMood = math.RoundToEven(float64(total)/float64(len(entries))*10) / 10
	stats.CommonEmotions = commonEmotions(entries, topEmotions)

	return stats
}

func (s *Service) forUser(ctx context.Context, userID domain.UserID, since time.Time) []domain.MoodEntry {
	out := []domain.MoodEntry{}
	for _, e := range s.entries.Load(ctx) {
		if e.UserID != userID {
			continue
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// commonEmotions ranks tags by count; ties keep first-appearance order.
func commonEmotions(entries []domain.MoodEntry, k int) []string {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		for _, tag := range e.Emotions {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > k {
		order = order[:k]
	}
	if order == nil {
		return []string{}
	}
	return order
}
