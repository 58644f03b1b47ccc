package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()

	b, err := Open(context.Background(), DialectSQLite, filepath.Join(t.TempDir(), "db", "soulsync.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)

	data, err := b.ReadCollection(ctx, domain.CollectionConversations)
	if err != nil {
		t.Fatalf("read absent: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for absent collection, got %q", data)
	}

	if err := b.WriteCollection(ctx, domain.CollectionConversations, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.WriteCollection(ctx, domain.CollectionConversations, []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := b.WriteCollection(ctx, domain.CollectionUsers, []byte(`[]`)); err != nil {
		t.Fatalf("write users: %v", err)
	}

	data, err = b.ReadCollection(ctx, domain.CollectionConversations)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `[{"id":"2"}]` {
		t.Fatalf("data=%q", data)
	}

	var rows int
	if err := b.db.QueryRow("SELECT count(*) FROM collections").Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 2 {
		t.Fatalf("expected one row per collection, got %d", rows)
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, DialectSQLite, ""); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if _, err := Open(ctx, Dialect("mysql"), "x"); err == nil {
		t.Fatalf("expected error for unsupported dialect")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		in      string
		want    string
	}{
		{DialectSQLite, "a = ? AND b = ?", "a = ? AND b = ?"},
		{DialectPostgres, "a = ? AND b = ?", "a = $1 AND b = $2"},
		{DialectPostgres, "no params", "no params"},
	}

	for _, tt := range tests {
		b := &Backend{dialect: tt.dialect}
		if got := b.rebind(tt.in); got != tt.want {
			t.Errorf("rebind(%s, %q) = %q, want %q", tt.dialect, tt.in, got, tt.want)
		}
	}
}
