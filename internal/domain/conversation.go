package domain

// Message is one turn of a conversation timeline.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Conversation is an ordered exchange history owned by a single user.
type Conversation struct {
	ID        ConversationID `json:"id"`
	UserID    UserID         `json:"user_id"`
	Title     string         `json:"title"`
	Messages  []Message      `json:"messages"`
	CreatedAt Timestamp      `json:"created_at"`
	UpdatedAt Timestamp      `json:"updated_at"`
}
