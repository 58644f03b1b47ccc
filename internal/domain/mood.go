package domain

const (
	MinMoodScore = 1
	MaxMoodScore = 10
)

// MoodEntry is an append-only mood check-in.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    UserID    `json:"user_id"`
	MoodScore int       `json:"mood_score"`
	Emotions  []string  `json:"emotions"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// MoodStats summarises a user's entries.
type MoodStats struct {
	AverageMood    float64  `json:"average_mood"`
	TotalEntries   int      `json:"total_entries"`
	CommonEmotions []string `json:"common_emotions"`
}

// StatusCheck is a liveness/audit record written by clients.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  Timestamp `json:"timestamp"`
}
