package domain

import "time"

type UserID string
type ConversationID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// CollectionName names one persisted JSON array.
type CollectionName string

const (
	CollectionUsers         CollectionName = "users"
	CollectionConversations CollectionName = "conversations"
	CollectionMoodEntries   CollectionName = "mood_entries"
	CollectionStatusChecks  CollectionName = "status_checks"
)

type Timestamp = time.Time
