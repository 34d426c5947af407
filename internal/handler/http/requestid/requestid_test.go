package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{"with request ID", WithRequestID(context.Background(), "test-id-123"), "test-id-123"},
		{"without request ID", context.Background(), ""},
		{"wrong type in context", context.WithValue(context.Background(), RequestIDKey, 12345), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromContext(tt.ctx))
		})
	}
}

func serve(t *testing.T, header string) (seen string, rec *httptest.ResponseRecorder) {
	t.Helper()
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware_PropagatesValidID(t *testing.T) {
	seen, rec := serve(t, "client-req_42.a")

	assert.Equal(t, "client-req_42.a", seen)
	assert.Equal(t, "client-req_42.a", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_GeneratesWhenMissing(t *testing.T) {
	seen, rec := serve(t, "")

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"spaces", "hello world"},
		{"newline injection", "abc\nlevel=ERROR"},
		{"quote", `a"b`},
		{"too long", strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, _ := serve(t, tt.id)
			assert.NotEqual(t, tt.id, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestMiddleware_UniquePerRequest(t *testing.T) {
	ids := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen, _ := serve(t, "")
		ids[seen] = struct{}{}
	}
	assert.Len(t, ids, 50)
}

func TestValid_MaxLength(t *testing.T) {
	assert.True(t, valid(strings.Repeat("a", 128)))
	assert.False(t, valid(""))
}
