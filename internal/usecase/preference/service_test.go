package preference_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"citypulse/internal/infra/adapter/persistence/memory"
	"citypulse/internal/repository"
	prefUC "citypulse/internal/usecase/preference"
)

type failingStore struct {
	getErr error
	setErr error
}

func (f *failingStore) Get(context.Context, string) (string, error) { return "", f.getErr }
func (f *failingStore) Set(context.Context, string, string) error  { return f.setErr }
func (f *failingStore) Ping(context.Context) error                 { return nil }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)) }

func TestSelectedCity_DefaultWhenUnset(t *testing.T) {
	svc := prefUC.NewService(memory.NewKVStore(), "", "", discard())
	assert.Equal(t, "New York", svc.SelectedCity(context.Background()))
}

func TestSelectedCity_AfterSave(t *testing.T) {
	ctx := context.Background()
	svc := prefUC.NewService(memory.NewKVStore(), "", "", discard())

	svc.SaveSelectedCity(ctx, "Austin")
	assert.Equal(t, "Austin", svc.SelectedCity(ctx))

	svc.SaveSelectedCity(ctx, "Chicago")
	assert.Equal(t, "Chicago", svc.SelectedCity(ctx))
}

func TestSelectedCity_EmptyStoredValue(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	svc := prefUC.NewService(store, "", "", discard())

	svc.SaveSelectedCity(ctx, "")
	assert.Equal(t, "New York", svc.SelectedCity(ctx))
}

func TestSelectedCity_ConfiguredDefault(t *testing.T) {
	svc := prefUC.NewService(memory.NewKVStore(), "", "Seattle", discard())
	assert.Equal(t, "Seattle", svc.SelectedCity(context.Background()))
}

func TestSelectedCity_ReadFailureFallsBack(t *testing.T) {
	store := &failingStore{getErr: errors.New("connection reset")}
	svc := prefUC.NewService(store, "", "", discard())
	assert.Equal(t, "New York", svc.SelectedCity(context.Background()))
}

func TestSelectedCity_NotFoundFromStore(t *testing.T) {
	store := &failingStore{getErr: repository.ErrKeyNotFound}
	svc := prefUC.NewService(store, "", "", discard())
	assert.Equal(t, "New York", svc.SelectedCity(context.Background()))
}

func TestSaveSelectedCity_WriteFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := &failingStore{setErr: errors.New("read-only")}
	svc := prefUC.NewService(store, "", "", logger)

	assert.NotPanics(t, func() { svc.SaveSelectedCity(context.Background(), "Denver") })
	assert.Contains(t, buf.String(), "selected city write failed")
	assert.Contains(t, buf.String(), "Denver")
}

func TestSaveSelectedCity_StoresVerbatimUnderKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	svc := prefUC.NewService(store, "@custom_city", "", discard())

	svc.SaveSelectedCity(ctx, "  San Francisco ")

	v, err := store.Get(ctx, "@custom_city")
	assert.NoError(t, err)
	assert.Equal(t, "  San Francisco ", v)
}
