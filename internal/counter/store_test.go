package counter_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/counter"
	"github.com/spec-kit/ticket-bot/internal/domain"
)

func readCounts(t *testing.T, path string) map[domain.TicketType]int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read counters file: %v", err)
	}
	out := make(map[domain.TicketType]int)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal counters file: %v", err)
	}
	return out
}

func TestIncrementSequencesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	store := counter.NewStore(path, zap.NewNop())
	store.Load()

	for want := 1; want <= 3; want++ {
		got := store.Increment(domain.TypeSupport)
		if got != want {
			t.Fatalf("increment returned %d, want %d", got, want)
		}
		if persisted := readCounts(t, path); !reflect.DeepEqual(persisted, store.Snapshot()) {
			t.Fatalf("file %v does not match memory %v", persisted, store.Snapshot())
		}
	}

	if got := store.Increment(domain.TypeFinance); got != 1 {
		t.Fatalf("finance counter = %d, want 1", got)
	}
	if persisted := readCounts(t, path); persisted[domain.TypeSupport] != 3 {
		t.Fatalf("support counter reset to %d", persisted[domain.TypeSupport])
	}
}

func TestLoadBackfillsMissingTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	partial := []byte(`{"suporte": 5, "financeiro": 2}`)
	if err := os.WriteFile(path, partial, 0o644); err != nil {
		t.Fatalf("seed counters file: %v", err)
	}

	store := counter.NewStore(path, zap.NewNop())
	store.Load()

	persisted := readCounts(t, path)
	if len(persisted) != len(domain.AllTypes()) {
		t.Fatalf("expected all %d types persisted, got %v", len(domain.AllTypes()), persisted)
	}
	if persisted[domain.TypeSupport] != 5 {
		t.Fatalf("support = %d, want 5", persisted[domain.TypeSupport])
	}
	if persisted[domain.TypeReport] != 0 || persisted[domain.TypeRoleplay] != 0 {
		t.Fatalf("missing types not backfilled to 0: %v", persisted)
	}

	if got := store.Increment(domain.TypeSupport); got != 6 {
		t.Fatalf("increment after load = %d, want 6", got)
	}
}

func TestLoadMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed counters file: %v", err)
	}

	store := counter.NewStore(path, zap.NewNop())
	store.Load()

	persisted := readCounts(t, path)
	for _, typ := range domain.AllTypes() {
		if persisted[typ] != 0 {
			t.Fatalf("expected zero default for %q, got %d", typ, persisted[typ])
		}
	}
}

func TestLoadMissingFileCreatesIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")

	store := counter.NewStore(path, zap.NewNop())
	store.Load()

	persisted := readCounts(t, path)
	if len(persisted) != len(domain.AllTypes()) {
		t.Fatalf("expected all types in fresh file, got %v", persisted)
	}
}

func TestUnwritablePathFallsBackToMemory(t *testing.T) {
	// A directory at the counters path makes both the read and the
	// write-back fail. The store must keep serving numbers from memory.
	path := t.TempDir()

	store := counter.NewStore(path, zap.NewNop())
	store.Load()

	if got := store.Increment(domain.TypeSupport); got != 1 {
		t.Fatalf("first support number = %d, want 1", got)
	}
	if got := store.Increment(domain.TypeSupport); got != 2 {
		t.Fatalf("second support number = %d, want 2", got)
	}
	snapshot := store.Snapshot()
	if len(snapshot) != len(domain.AllTypes()) {
		t.Fatalf("expected all types in snapshot, got %v", snapshot)
	}
	if snapshot[domain.TypeRoleplay] != 0 {
		t.Fatalf("roleplay counter = %d, want 0", snapshot[domain.TypeRoleplay])
	}
}

func TestConcurrentIncrementsStayMonotonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	store := counter.NewStore(path, zap.NewNop())
	store.Load()

	const workers = 8
	const perWorker = 5
	seen := make(chan int, workers*perWorker)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			for i := 0; i < perWorker; i++ {
				seen <- store.Increment(domain.TypeReport)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	close(seen)

	unique := make(map[int]bool)
	for n := range seen {
		if unique[n] {
			t.Fatalf("duplicate sequence number %d", n)
		}
		unique[n] = true
	}
	if len(unique) != workers*perWorker {
		t.Fatalf("expected %d unique numbers, got %d", workers*perWorker, len(unique))
	}
	if store.Snapshot()[domain.TypeReport] != workers*perWorker {
		t.Fatalf("final counter = %d", store.Snapshot()[domain.TypeReport])
	}
}
