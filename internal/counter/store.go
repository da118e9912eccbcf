package counter

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// Store persists the per-type ticket counters as a whole JSON file. The
// increment-then-persist sequence is guarded by a mutex so concurrent
// ticket creation of the same type cannot yield duplicate sequence numbers.
type Store struct {
	mu     sync.Mutex
	path   string
	counts map[domain.TicketType]int
	logger *zap.Logger
}

// NewStore creates a store with all known types at zero.
func NewStore(path string, logger *zap.Logger) *Store {
	counts := make(map[domain.TicketType]int, len(domain.AllTypes()))
	for _, t := range domain.AllTypes() {
		counts[t] = 0
	}
	return &Store{path: path, counts: counts, logger: logger}
}

// Load reads the persisted counts, backfilling any known type missing from
// the file, and writes the merged result back so the file always reflects
// all known types. Read, parse and write failures are all non-fatal: the
// store falls back to its in-memory counts and keeps serving sequence
// numbers.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unable to read counters file, using defaults",
				zap.String("path", s.path), zap.Error(err))
		}
		s.persistBestEffortLocked()
		return
	}

	loaded := make(map[domain.TicketType]int)
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("malformed counters file, using defaults",
			zap.String("path", s.path), zap.Error(err))
		s.persistBestEffortLocked()
		return
	}

	for t, n := range loaded {
		s.counts[t] = n
	}

	s.logger.Info("ticket counters loaded", zap.String("path", s.path))
	s.persistBestEffortLocked()
}

// Increment advances the counter for a type by one, persists the full
// mapping and returns the new value to be used as the ticket's sequence
// number. A write failure is logged and swallowed; the in-memory counter
// still advances.
func (s *Store) Increment(t domain.TicketType) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[t]++
	n := s.counts[t]

	if err := s.persistLocked(); err != nil {
		s.logger.Error("unable to persist ticket counters",
			zap.String("path", s.path),
			zap.String("ticket_type", string(t)),
			zap.Error(err))
	}
	return n
}

// Snapshot returns a copy of the current mapping.
func (s *Store) Snapshot() map[domain.TicketType]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.TicketType]int, len(s.counts))
	for t, n := range s.counts {
		out[t] = n
	}
	return out
}

// Path returns the counters file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) persistBestEffortLocked() {
	if err := s.persistLocked(); err != nil {
		s.logger.Warn("unable to persist ticket counters, continuing in memory",
			zap.String("path", s.path), zap.Error(err))
	}
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.counts, "", "    ")
	if err != nil {
		return util.NewPersistenceError("marshal counters", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return util.NewPersistenceError("write counters file", err)
	}
	return nil
}
