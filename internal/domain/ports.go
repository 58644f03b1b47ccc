package domain

import "context"

// CollectionBackend stores whole collections as JSON array documents.
// ReadCollection returns nil data and a nil error when the collection does not exist yet.
type CollectionBackend interface {
	ReadCollection(ctx context.Context, name CollectionName) ([]byte, error)
	WriteCollection(ctx context.Context, name CollectionName, data []byte) error
	Close() error
}

// Notifier delivers a text message to an external chat channel.
type Notifier interface {
	Configured() bool
	Notify(ctx context.Context, chatID, text string) error
}
