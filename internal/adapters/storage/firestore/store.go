package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

// DefaultRootCollection holds one document per stored collection.
const DefaultRootCollection = "soulsync_collections"

// Store keeps each collection as a single Firestore document.
// Documents are capped at 1 MiB, so this suits small deployments only.
type Store struct {
	client *firestore.Client
	root   string
	now    func() time.Time
}

// NewStore creates a Firestore store.
// Uses the project passed (SOULSYNC_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{
		client: client,
		root:   DefaultRootCollection,
		now:    time.Now,
	}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) collectionDoc(name domain.CollectionName) *firestore.DocumentRef {
	return s.client.Collection(s.root).Doc(string(name))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type collectionDoc struct {
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// ─────────────────────────────────────────
// CollectionBackend implementation
// ─────────────────────────────────────────

func (s *Store) ReadCollection(ctx context.Context, name domain.CollectionName) ([]byte, error) {
	snap, err := s.collectionDoc(name).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore ReadCollection %s: %w", name, err)
	}

	var doc collectionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore ReadCollection %s decode: %w", name, err)
	}

	return []byte(doc.Payload), nil
}

func (s *Store) WriteCollection(ctx context.Context, name domain.CollectionName, data []byte) error {
	doc := collectionDoc{
		Payload:   string(data),
		UpdatedAt: s.now().UTC(),
	}

	if _, err := s.collectionDoc(name).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore WriteCollection %s: %w", name, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
