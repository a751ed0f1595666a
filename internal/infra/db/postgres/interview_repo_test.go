//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-interview-service/internal/domain/model"
	"ai-interview-service/internal/infra/security"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		log.Println("TEST_DATABASE_URL not set; skipping postgres integration tests")
		os.Exit(0)
	}

	ctx := context.Background()
	pool, err := NewPgxPool(ctx, dsn, 4)
	if err != nil {
		log.Fatalf("connect test database: %v", err)
	}
	testPool = pool

	migration, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "001_interviews.sql"))
	if err != nil {
		log.Fatalf("read migration: %v", err)
	}
	if _, err := testPool.Exec(ctx, string(migration)); err != nil {
		log.Fatalf("apply migration: %v", err)
	}

	code := m.Run()
	testPool.Close()
	os.Exit(code)
}

func cleanup(t *testing.T) {
	t.Helper()
	if _, err := testPool.Exec(context.Background(), "TRUNCATE interviews"); err != nil {
		t.Fatalf("truncate interviews: %v", err)
	}
}

func TestInterviewRepo_SaveAssignsIDAndTimestamp(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewInterviewRepo(testPool, nil)

	rec := model.NewInterviewRecord(
		"https://bucket.host/a.wav", "你好", "您好，请先自我介绍。", "https://bucket.host/b.wav",
	)
	id, err := repo.Save(ctx, rec)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" || rec.ID != id {
		t.Fatalf("Save must assign the record id, got %q / %q", id, rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("Save must stamp created_at")
	}
}

func TestInterviewRepo_ListAllNewestFirst(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewInterviewRepo(testPool, nil)

	for i, text := range []string{"first", "second", "third"} {
		rec := model.NewInterviewRecord("u", text, "r", "a")
		if _, err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond) // distinct created_at
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].UserText != "third" || got[2].UserText != "first" {
		t.Fatalf("expected newest-first order, got %q..%q", got[0].UserText, got[2].UserText)
	}
}

func TestInterviewRepo_EncryptedAtRest(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	enc, err := security.NewEncryptionService("0123456789abcdef")
	if err != nil {
		t.Fatalf("encryption service: %v", err)
	}
	repo := NewInterviewRepo(testPool, enc)

	rec := model.NewInterviewRecord("u", "机密面试内容", "机密回复", "a")
	if _, err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The raw column must not hold the plaintext.
	var stored string
	if err := testPool.QueryRow(ctx, "SELECT user_text FROM interviews WHERE id = $1", rec.ID).Scan(&stored); err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if stored == "机密面试内容" {
		t.Fatal("user_text stored in plaintext despite encryption being enabled")
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(got) != 1 || got[0].UserText != "机密面试内容" || got[0].AIResponseText != "机密回复" {
		t.Fatal("ListAll must return decrypted transcripts")
	}
}
