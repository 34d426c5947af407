package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"citypulse/internal/domain/entity"
	"citypulse/internal/observability/metrics"
	"citypulse/internal/repository"
)

// DefaultKey is the storage key holding the bookmark array.
const DefaultKey = "@city_pulse_bookmarks"

// Outcome classifies how a read of the persisted set went.
type Outcome int

const (
	// OutcomeLoaded means a valid array was read (possibly empty).
	OutcomeLoaded Outcome = iota
	// OutcomeAbsent means nothing has been persisted yet.
	OutcomeAbsent
	// OutcomeCorrupt means a value exists but does not decode.
	OutcomeCorrupt
	// OutcomeUnavailable means the store returned an error.
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeAbsent:
		return "absent"
	case OutcomeCorrupt:
		return "corrupt"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Snapshot is the result of reading the persisted set.
// Articles is never nil; it is empty unless Outcome is OutcomeLoaded.
type Snapshot struct {
	Articles []entity.Article
	Outcome  Outcome
	Err      error
}

// Service manages bookmarks on top of a KVStore.
//
// Every mutation reads the whole set, edits it in memory and writes it back.
// mu serializes those cycles within the process; separate processes sharing
// one store can still interleave.
type Service struct {
	Store  repository.KVStore
	Key    string
	Logger *slog.Logger

	mu sync.Mutex
}

// NewService creates a bookmark service stored under key (DefaultKey when empty).
func NewService(store repository.KVStore, key string, logger *slog.Logger) *Service {
	return &Service{Store: store, Key: key, Logger: logger}
}

func (s *Service) key() string {
	if s.Key == "" {
		return DefaultKey
	}
	return s.Key
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Load reads the persisted set and reports how the read went.
func (s *Service) Load(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) Snapshot {
	raw, err := s.Store.Get(ctx, s.key())
	if errors.Is(err, repository.ErrKeyNotFound) {
		return Snapshot{Articles: []entity.Article{}, Outcome: OutcomeAbsent}
	}
	if err != nil {
		return Snapshot{
			Articles: []entity.Article{},
			Outcome:  OutcomeUnavailable,
			Err:      fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
		}
	}

	var articles []entity.Article
	if err := json.Unmarshal([]byte(raw), &articles); err != nil {
		return Snapshot{
			Articles: []entity.Article{},
			Outcome:  OutcomeCorrupt,
			Err:      fmt.Errorf("%w: %w", ErrCorruptBookmarks, err),
		}
	}
	// "null" decodes to a nil slice
	if articles == nil {
		articles = []entity.Article{}
	}
	return Snapshot{Articles: articles, Outcome: OutcomeLoaded}
}

// readForUpdate loads the set for a mutation. Corrupt data is treated as an
// empty set and will be overwritten; an unreadable store aborts the mutation.
func (s *Service) readForUpdate(ctx context.Context, op string) ([]entity.Article, bool) {
	snap := s.load(ctx)
	switch snap.Outcome {
	case OutcomeUnavailable:
		s.logger().Warn("bookmark read failed",
			slog.String("operation", op),
			slog.Any("error", snap.Err))
		metrics.RecordBookmarkOperation(op, "read_failed")
		return nil, false
	case OutcomeCorrupt:
		s.logger().Warn("discarding corrupt bookmarks",
			slog.String("operation", op),
			slog.Any("error", snap.Err))
	}
	return snap.Articles, true
}

func (s *Service) write(ctx context.Context, op string, articles []entity.Article) bool {
	data, err := json.Marshal(articles)
	if err != nil {
		s.logger().Error("encode bookmarks failed", slog.String("operation", op), slog.Any("error", err))
		metrics.RecordBookmarkOperation(op, "write_failed")
		return false
	}
	if err := s.Store.Set(ctx, s.key(), string(data)); err != nil {
		s.logger().Warn("bookmark write failed",
			slog.String("operation", op),
			slog.Any("error", err))
		metrics.RecordBookmarkOperation(op, "write_failed")
		return false
	}
	metrics.SetBookmarksStored(len(articles))
	return true
}

// List returns the bookmarks in insertion order. Any read failure yields an
// empty list.
func (s *Service) List(ctx context.Context) []entity.Article {
	return s.Listing(ctx).Articles
}

// Listing is List with the read outcome attached.
func (s *Service) Listing(ctx context.Context) Snapshot {
	snap := s.Load(ctx)
	switch snap.Outcome {
	case OutcomeCorrupt, OutcomeUnavailable:
		s.logger().Warn("bookmark list degraded to empty",
			slog.String("outcome", snap.Outcome.String()),
			slog.Any("error", snap.Err))
		metrics.RecordBookmarkOperation("list", "read_failed")
	default:
		metrics.RecordBookmarkOperation("list", "listed")
	}
	return snap
}

// Add appends article unless a bookmark with the same URL exists.
// It reports whether the article was added and persisted.
func (s *Service) Add(ctx context.Context, article entity.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.readForUpdate(ctx, "add")
	if !ok {
		return false
	}
	for _, a := range existing {
		if a.SameAs(article) {
			metrics.RecordBookmarkOperation("add", "duplicate")
			return false
		}
	}

	updated := make([]entity.Article, 0, len(existing)+1)
	updated = append(updated, existing...)
	updated = append(updated, article)
	if !s.write(ctx, "add", updated) {
		return false
	}

	metrics.RecordBookmarkOperation("add", "added")
	s.logger().Debug("bookmark added", slog.String("url", article.URL), slog.Int("count", len(updated)))
	return true
}

// Remove deletes every bookmark whose URL equals url and persists the result.
// It returns true once the write succeeds, including when nothing matched.
func (s *Service) Remove(ctx context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.readForUpdate(ctx, "remove")
	if !ok {
		return false
	}

	kept := make([]entity.Article, 0, len(existing))
	for _, a := range existing {
		if a.URL != url {
			kept = append(kept, a)
		}
	}
	if !s.write(ctx, "remove", kept) {
		return false
	}

	metrics.RecordBookmarkOperation("remove", "removed")
	s.logger().Debug("bookmark removed",
		slog.String("url", url),
		slog.Int("matched", len(existing)-len(kept)))
	return true
}

// Contains reports whether a bookmark with url is persisted.
// Read failures report false.
func (s *Service) Contains(ctx context.Context, url string) bool {
	snap := s.Load(ctx)
	if snap.Err != nil {
		s.logger().Warn("bookmark check degraded to false",
			slog.String("outcome", snap.Outcome.String()),
			slog.Any("error", snap.Err))
		metrics.RecordBookmarkOperation("contains", "read_failed")
		return false
	}
	for _, a := range snap.Articles {
		if a.URL == url {
			metrics.RecordBookmarkOperation("contains", "hit")
			return true
		}
	}
	metrics.RecordBookmarkOperation("contains", "miss")
	return false
}
