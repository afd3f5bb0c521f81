package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

func TestGetOrCreate(t *testing.T) {
	store := New()

	lib, created, err := store.GetOrCreate("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("Expected a new session for empty ID")
	}
	if !strings.HasPrefix(lib.ID, "lib-") {
		t.Errorf("Expected lib- prefix, got %s", lib.ID)
	}

	again, created, err := store.GetOrCreate(lib.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("Expected existing session to be reused")
	}
	if again != lib {
		t.Error("Expected the same library instance")
	}

	other, created, _ := store.GetOrCreate("lib-does-not-exist")
	if !created || other.ID == "lib-does-not-exist" {
		t.Error("Expected unknown IDs to get a fresh server-issued session")
	}

	if store.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", store.Len())
	}
}

func TestDeleteDiscardsRecords(t *testing.T) {
	store := New()
	lib, _, _ := store.GetOrCreate("")
	lib.Append(models.BookRecord{ISBN: "9780441013593"})

	if !store.Delete(lib.ID) {
		t.Error("Expected Delete to report an existing session")
	}
	if _, ok := store.Get(lib.ID); ok {
		t.Error("Expected session to be gone")
	}
	if store.Delete(lib.ID) {
		t.Error("Expected second Delete to report nothing removed")
	}

	fresh, created, _ := store.GetOrCreate(lib.ID)
	if !created || fresh.Len() != 0 {
		t.Error("Expected a new empty library after termination")
	}
}

func TestEvictIdle(t *testing.T) {
	store := New()
	stale, _, _ := store.GetOrCreate("")
	active, _, _ := store.GetOrCreate("")

	later := time.Now().Add(2 * time.Hour)
	active.Touch()

	if n := store.EvictIdle(3*time.Hour, later); n != 0 {
		t.Errorf("Expected nothing evicted within ttl, got %d", n)
	}
	if n := store.EvictIdle(time.Hour, later); n != 2 {
		t.Errorf("Expected both sessions evicted, got %d", n)
	}
	if _, ok := store.Get(stale.ID); ok {
		t.Error("Expected stale session evicted")
	}
}
