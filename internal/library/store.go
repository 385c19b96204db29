// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps the user's saved articles. Reads are served from
// memory; every mutation is persisted in the background to a single durable
// slot (a file, a SQLite row, or an S3 object).
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/internal/observability"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// ErrStorageRead and ErrStorageWrite classify persistence failures. Neither
// is returned to callers: reads fall back to an empty library and writes
// leave the in-memory state authoritative. Both are logged.
var (
	ErrStorageRead  = errors.New("library storage read failed")
	ErrStorageWrite = errors.New("library storage write failed")
)

// writeTimeout bounds one background slot write.
var writeTimeout = 30 * time.Second

// Store is the saved-article set. It is safe for concurrent use. Articles
// keep insertion order and ids are unique.
type Store struct {
	mu       sync.RWMutex
	articles []types.ArticleRecord
	ids      map[string]struct{}
	closed   bool

	slot    Slot
	pending chan []byte
	done    chan struct{}
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Open loads the library from slot and starts the background writer. Load
// failures are logged and yield an empty library.
func Open(ctx context.Context, slot Slot, logger *zap.Logger, metrics *observability.Metrics) *Store {
	s := &Store{
		ids:     make(map[string]struct{}),
		slot:    slot,
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
		logger:  observability.OrNop(logger).With(zap.String("component", "library")),
		metrics: metrics,
	}
	s.load(ctx)
	go s.writer()
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return
	}
	if err != nil {
		s.logger.Warn("loading library", zap.Error(fmt.Errorf("%w: %w", ErrStorageRead, err)))
		return
	}

	var records []types.ArticleRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("library data is corrupt, starting empty",
			zap.Error(fmt.Errorf("%w: %w", ErrStorageRead, err)))
		return
	}

	dropped := 0
	for _, r := range records {
		if r.ID == "" {
			dropped++
			continue
		}
		if _, dup := s.ids[r.ID]; dup {
			dropped++
			continue
		}
		s.ids[r.ID] = struct{}{}
		s.articles = append(s.articles, r)
	}
	if dropped > 0 {
		s.logger.Info("dropped invalid or duplicate library entries", zap.Int("count", dropped))
	}
}

// Toggle removes a if an article with its id is saved, otherwise appends
// it. It reports whether a is saved afterwards.
func (s *Store) Toggle(a types.ArticleRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[a.ID]; ok {
		s.removeLocked(a.ID)
		s.persistLocked()
		return false
	}
	s.ids[a.ID] = struct{}{}
	s.articles = append(s.articles, a)
	s.persistLocked()
	return true
}

// Remove deletes the article with id. It reports whether one was present;
// removing an absent id is a no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return false
	}
	s.removeLocked(id)
	s.persistLocked()
	return true
}

func (s *Store) removeLocked(id string) {
	delete(s.ids, id)
	for i, a := range s.articles {
		if a.ID == id {
			s.articles = append(s.articles[:i:i], s.articles[i+1:]...)
			return
		}
	}
}

// Contains reports whether id is saved.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Get returns the saved article with id.
func (s *Store) Get(id string) (types.ArticleRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ids[id]; !ok {
		return types.ArticleRecord{}, false
	}
	for _, a := range s.articles {
		if a.ID == id {
			return a, true
		}
	}
	return types.ArticleRecord{}, false
}

// Articles returns a copy of the saved articles in insertion order.
func (s *Store) Articles() []types.ArticleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ArticleRecord, len(s.articles))
	copy(out, s.articles)
	return out
}

// Len returns the number of saved articles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// Close writes any pending snapshot and stops the background writer.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.pending)
	s.mu.Unlock()
	<-s.done
}

// persistLocked queues a snapshot of the current articles. A snapshot still
// waiting in the queue is replaced, so the writer only sees the latest.
func (s *Store) persistLocked() {
	if s.closed {
		s.logger.Warn("library mutated after close, change not persisted")
		return
	}
	snapshot := s.articles
	if snapshot == nil {
		snapshot = []types.ArticleRecord{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn("encoding library", zap.Error(fmt.Errorf("%w: %w", ErrStorageWrite, err)))
		return
	}

	for {
		select {
		case s.pending <- data:
			return
		default:
			select {
			case <-s.pending:
			default:
			}
		}
	}
}

func (s *Store) writer() {
	defer close(s.done)
	for data := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := s.slot.Write(ctx, data)
		cancel()
		if err != nil {
			s.metrics.ObserveLibraryWrite("failed")
			s.logger.Warn("saving library", zap.Error(fmt.Errorf("%w: %w", ErrStorageWrite, err)))
			continue
		}
		s.metrics.ObserveLibraryWrite("ok")
	}
}
