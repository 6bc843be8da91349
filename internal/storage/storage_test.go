package storage_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/creastudio/studiogate/internal/model"
	"github.com/creastudio/studiogate/internal/storage"
	"github.com/creastudio/studiogate/internal/testutil"
)

var testDB *storage.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run()) // tests skip themselves when testDB is nil
	}

	tc := testutil.MustStartPostgres()
	defer tc.Terminate()

	var err error
	testDB, err = tc.NewTestDB(context.Background(), testutil.TestLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage_test: %v\n", err)
		os.Exit(1)
	}
	defer testDB.Close()

	os.Exit(m.Run())
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("integration test requires docker; run without -short")
	}
}

func TestUserRoleAbsent(t *testing.T) {
	requireDB(t)

	_, err := testDB.UserRole(context.Background(), uuid.New())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserRoleRoundTrip(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	userID := uuid.New()
	_, err := testDB.Pool().Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`,
		userID, "manager")
	if err != nil {
		t.Fatalf("seed role: %v", err)
	}

	role, err := testDB.UserRole(ctx, userID)
	if err != nil {
		t.Fatalf("UserRole: %v", err)
	}
	if role != model.RoleManager {
		t.Errorf("role = %q, want manager", role)
	}
}

func TestInsertAISession(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	userID := uuid.New()
	prompt, completion, total := 100, 50, 150
	modelName := "claude-sonnet-4"
	assistantID := "asst_abc"

	err := testDB.InsertAISession(ctx, model.Conversation{
		UserID:           &userID,
		UserHash:         "deadbeefdeadbeef",
		SessionID:        "session_1724_abc",
		Provider:         "anthropic",
		AssistantID:      &assistantID,
		MessageCount:     7,
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
		TotalTokens:      &total,
		Model:            &modelName,
		ConversationContext: map[string]any{
			"page": "/projects/9",
		},
	})
	if err != nil {
		t.Fatalf("InsertAISession: %v", err)
	}

	// Nullable fields may all be absent.
	err = testDB.InsertAISession(ctx, model.Conversation{
		UserHash:  "deadbeefdeadbeef",
		SessionID: "session_1724_def",
	})
	if err != nil {
		t.Fatalf("InsertAISession minimal: %v", err)
	}

	n, err := testDB.CountAISessions(ctx, "deadbeefdeadbeef")
	if err != nil {
		t.Fatalf("CountAISessions: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	requireDB(t)

	// Second run must be a no-op: every file is already recorded.
	if err := testDB.RunMigrations(context.Background(), os.DirFS("../../migrations")); err != nil {
		t.Fatalf("re-run migrations: %v", err)
	}
}
