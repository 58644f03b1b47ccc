package domain

// EmergencyContact is where crisis alerts for a user are relayed.
type EmergencyContact struct {
	TelegramChatID string `json:"telegram_chat_id"`
	Name           string `json:"name,omitempty"`
}

// User is the stored account record. PasswordHash never leaves the service layer.
type User struct {
	ID                  UserID            `json:"id"`
	Email               string            `json:"email"`
	Name                string            `json:"name"`
	PasswordHash        string            `json:"password_hash"`
	CreatedAt           Timestamp         `json:"created_at"`
	EmergencyContact    *EmergencyContact `json:"emergency_contact,omitempty"`
	OnboardingCompleted bool              `json:"onboarding_completed"`
}

// UserPatch lists the only fields a client may change. Nil means "leave as is".
type UserPatch struct {
	Name                *string
	EmergencyContact    *EmergencyContact
	OnboardingCompleted *bool
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.EmergencyContact == nil && p.OnboardingCompleted == nil
}
