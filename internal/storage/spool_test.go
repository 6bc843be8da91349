package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/creastudio/studiogate/internal/model"
)

func TestSpoolInsertAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	spool, err := OpenSpool(path, logger)
	if err != nil {
		t.Fatalf("OpenSpool: %v", err)
	}
	defer func() { _ = spool.Close() }()

	ctx := context.Background()

	userID := uuid.New()
	tokens := 128
	modelName := "gpt-4o"
	err = spool.InsertAISession(ctx, model.Conversation{
		UserID:              &userID,
		UserHash:            "abcd1234abcd1234",
		SessionID:           "session_1_x",
		Provider:            "openai",
		MessageCount:        3,
		TotalTokens:         &tokens,
		Model:               &modelName,
		ConversationContext: map[string]any{"page": "/projects/42"},
	})
	if err != nil {
		t.Fatalf("InsertAISession: %v", err)
	}

	// Optional fields may all be absent.
	err = spool.InsertAISession(ctx, model.Conversation{
		UserHash:  "ffff0000ffff0000",
		SessionID: "session_2_y",
	})
	if err != nil {
		t.Fatalf("InsertAISession minimal: %v", err)
	}

	n, err := spool.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 2 {
		t.Errorf("spool len = %d, want 2", n)
	}
}

func TestSpoolReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	spool, err := OpenSpool(path, logger)
	if err != nil {
		t.Fatalf("OpenSpool: %v", err)
	}
	if err := spool.InsertAISession(context.Background(), model.Conversation{
		UserHash: "1111222233334444", SessionID: "session_3_z",
	}); err != nil {
		t.Fatalf("InsertAISession: %v", err)
	}
	_ = spool.Close()

	// Rows survive process restarts.
	spool, err = OpenSpool(path, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = spool.Close() }()

	n, err := spool.Len(context.Background())
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("spool len after reopen = %d, want 1", n)
	}
}
