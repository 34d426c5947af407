package bookmark_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citypulse/internal/domain/entity"
	"citypulse/internal/infra/adapter/persistence/memory"
	"citypulse/internal/repository"
	bookmarkUC "citypulse/internal/usecase/bookmark"
)

/* ───────── スタブ ───────── */

type stubStore struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	sets    int
	getWait time.Duration
}

func newStub() *stubStore { return &stubStore{data: map[string]string{}} }

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	if s.getWait > 0 {
		time.Sleep(s.getWait)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}
	return v, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.data[key] = value
	return nil
}

func (s *stubStore) Ping(context.Context) error { return nil }

func article(n int) entity.Article {
	return entity.Article{
		Title: fmt.Sprintf("Story %d", n),
		URL:   fmt.Sprintf("https://news.example.com/%d", n),
		Date:  "2024-05-01T12:00:00Z",
	}
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newService(store repository.KVStore) *bookmarkUC.Service {
	return bookmarkUC.NewService(store, "", quietLogger())
}

/* ───────── 1. Add / Contains ───────── */

func TestService_AddThenContains(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewKVStore())

	a := article(1)
	assert.True(t, svc.Add(ctx, a))
	assert.True(t, svc.Contains(ctx, a.URL))
	assert.False(t, svc.Contains(ctx, article(2).URL))
}

func TestService_AddDuplicateKeepsFirst(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	svc := newService(store)

	first := article(1)
	again := first
	again.Title = "Updated headline"

	require.True(t, svc.Add(ctx, first))
	assert.False(t, svc.Add(ctx, again))
	assert.Equal(t, 1, store.sets, "duplicate add must not write")

	got := svc.List(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "Story 1", got[0].Title)
}

func TestService_ListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewKVStore())

	want := []entity.Article{article(3), article(1), article(2)}
	for _, a := range want {
		require.True(t, svc.Add(ctx, a))
	}
	require.False(t, svc.Add(ctx, article(1)))

	if diff := cmp.Diff(want, svc.List(ctx)); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestService_PersistsUnderKey(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	svc := bookmarkUC.NewService(store, "@test_bookmarks", quietLogger())

	require.True(t, svc.Add(ctx, article(1)))

	raw, ok := store.data["@test_bookmarks"]
	require.True(t, ok)
	var decoded []entity.Article
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, []entity.Article{article(1)}, decoded)
}

func TestService_DefaultKey(t *testing.T) {
	store := newStub()
	require.True(t, newService(store).Add(context.Background(), article(1)))
	_, ok := store.data[bookmarkUC.DefaultKey]
	assert.True(t, ok)
}

/* ───────── 2. Remove ───────── */

func TestService_RemoveThenContainsFalse(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.NewKVStore())

	require.True(t, svc.Add(ctx, article(1)))
	require.True(t, svc.Add(ctx, article(2)))

	assert.True(t, svc.Remove(ctx, article(1).URL))
	assert.False(t, svc.Contains(ctx, article(1).URL))
	assert.Equal(t, []entity.Article{article(2)}, svc.List(ctx))
}

func TestService_RemoveAbsentStillSucceeds(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	svc := newService(store)

	assert.True(t, svc.Remove(ctx, "https://never.example.com"))
	assert.False(t, svc.Contains(ctx, "https://never.example.com"))
	assert.Equal(t, "[]", store.data[bookmarkUC.DefaultKey])
}

func TestService_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	svc := newService(store)

	require.True(t, svc.Add(ctx, article(1)))
	require.True(t, svc.Add(ctx, article(2)))

	require.True(t, svc.Remove(ctx, article(1).URL))
	afterFirst := store.data[bookmarkUC.DefaultKey]
	require.True(t, svc.Remove(ctx, article(1).URL))
	assert.Equal(t, afterFirst, store.data[bookmarkUC.DefaultKey])
}

func TestService_RemoveDropsEveryMatch(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	dup := article(1)
	raw, _ := json.Marshal([]entity.Article{dup, article(2), dup})
	store.data[bookmarkUC.DefaultKey] = string(raw)

	svc := newService(store)
	require.True(t, svc.Remove(ctx, dup.URL))
	assert.Equal(t, []entity.Article{article(2)}, svc.List(ctx))
}

/* ───────── 3. Failure semantics ───────── */

func TestService_WriteFailure(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	svc := newService(store)
	require.True(t, svc.Add(ctx, article(1)))
	before := store.data[bookmarkUC.DefaultKey]

	store.setErr = errors.New("disk full")

	assert.False(t, svc.Add(ctx, article(2)))
	assert.False(t, svc.Remove(ctx, article(1).URL))
	assert.Equal(t, before, store.data[bookmarkUC.DefaultKey])
}

func TestService_ReadFailure(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	store.getErr = errors.New("connection refused")
	svc := newService(store)

	assert.Empty(t, svc.List(ctx))
	assert.NotNil(t, svc.List(ctx))
	assert.False(t, svc.Contains(ctx, article(1).URL))
	assert.False(t, svc.Add(ctx, article(1)), "add must not overwrite an unreadable store")
	assert.False(t, svc.Remove(ctx, article(1).URL))
	assert.Zero(t, store.sets)
}

func TestService_CorruptData(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	store.data[bookmarkUC.DefaultKey] = "{not json"
	svc := newService(store)

	snap := svc.Load(ctx)
	assert.Equal(t, bookmarkUC.OutcomeCorrupt, snap.Outcome)
	assert.ErrorIs(t, snap.Err, bookmarkUC.ErrCorruptBookmarks)
	assert.Empty(t, svc.List(ctx))

	// a mutation replaces the corrupt value
	require.True(t, svc.Add(ctx, article(1)))
	assert.Equal(t, []entity.Article{article(1)}, svc.List(ctx))
}

func TestService_ListingCarriesOutcome(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	svc := newService(store)

	assert.Equal(t, bookmarkUC.OutcomeAbsent, svc.Listing(ctx).Outcome)

	require.True(t, svc.Add(ctx, article(1)))
	snap := svc.Listing(ctx)
	assert.Equal(t, bookmarkUC.OutcomeLoaded, snap.Outcome)
	assert.Len(t, snap.Articles, 1)

	store.getErr = errors.New("connection reset")
	snap = svc.Listing(ctx)
	assert.Equal(t, bookmarkUC.OutcomeUnavailable, snap.Outcome)
	assert.NotNil(t, snap.Articles)
	assert.Empty(t, snap.Articles)
}

/* ───────── 4. Load ───────── */

func TestService_Load(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*stubStore)
		outcome bookmarkUC.Outcome
		wantErr error
		count   int
	}{
		{
			name:    "absent",
			setup:   func(*stubStore) {},
			outcome: bookmarkUC.OutcomeAbsent,
		},
		{
			name: "loaded",
			setup: func(s *stubStore) {
				raw, _ := json.Marshal([]entity.Article{article(1), article(2)})
				s.data[bookmarkUC.DefaultKey] = string(raw)
			},
			outcome: bookmarkUC.OutcomeLoaded,
			count:   2,
		},
		{
			name:    "null value",
			setup:   func(s *stubStore) { s.data[bookmarkUC.DefaultKey] = "null" },
			outcome: bookmarkUC.OutcomeLoaded,
		},
		{
			name:    "wrong shape",
			setup:   func(s *stubStore) { s.data[bookmarkUC.DefaultKey] = `{"title":"x"}` },
			outcome: bookmarkUC.OutcomeCorrupt,
			wantErr: bookmarkUC.ErrCorruptBookmarks,
		},
		{
			name:    "unavailable",
			setup:   func(s *stubStore) { s.getErr = errors.New("timeout") },
			outcome: bookmarkUC.OutcomeUnavailable,
			wantErr: bookmarkUC.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStub()
			tt.setup(store)

			snap := newService(store).Load(context.Background())

			assert.Equal(t, tt.outcome, snap.Outcome)
			assert.NotNil(t, snap.Articles)
			assert.Len(t, snap.Articles, tt.count)
			if tt.wantErr != nil {
				assert.ErrorIs(t, snap.Err, tt.wantErr)
			} else {
				assert.NoError(t, snap.Err)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "absent", bookmarkUC.OutcomeAbsent.String())
	assert.Equal(t, "corrupt", bookmarkUC.OutcomeCorrupt.String())
	assert.Equal(t, "outcome(9)", bookmarkUC.Outcome(9).String())
}

/* ───────── 5. Concurrency ───────── */

func TestService_ConcurrentAddsLoseNothing(t *testing.T) {
	ctx := context.Background()
	store := newStub()
	// widen the window between read and write
	store.getWait = time.Millisecond
	svc := newService(store)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.True(t, svc.Add(ctx, article(i)))
		}(i)
	}
	wg.Wait()

	got := svc.List(ctx)
	assert.Len(t, got, n)
	for i := 0; i < n; i++ {
		assert.True(t, svc.Contains(ctx, article(i).URL), "missing %d", i)
	}
}
