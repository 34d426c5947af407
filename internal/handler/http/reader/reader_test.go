package reader_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citypulse/internal/handler/http/reader"
	rd "citypulse/internal/infra/reader"
	"citypulse/internal/resilience/circuitbreaker"
)

type stubReader struct {
	content *rd.Content
	err     error
	gotURL  string
}

func (s *stubReader) Read(_ context.Context, rawURL string) (*rd.Content, error) {
	s.gotURL = rawURL
	return s.content, s.err
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_ReturnsContent(t *testing.T) {
	s := &stubReader{content: &rd.Content{
		URL:    "https://news.example.com/a",
		Title:  "Council votes on budget",
		Text:   "The city council voted...",
		Length: 25,
	}}

	rec := get(reader.Handler{Reader: s}, "/reader?url=https%3A%2F%2Fnews.example.com%2Fa")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://news.example.com/a", s.gotURL)
	var body rd.Content
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Council votes on budget", body.Title)
	assert.Equal(t, 25, body.Length)
}

func TestHandler_MissingURL(t *testing.T) {
	s := &stubReader{}
	rec := get(reader.Handler{Reader: s}, "/reader")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.gotURL, "reader must not be called")
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantRetryable bool
	}{
		{"invalid url", fmt.Errorf("%w: scheme ftp", rd.ErrInvalidURL), http.StatusBadRequest, false},
		{"private ip", fmt.Errorf("%w: 127.0.0.1", rd.ErrPrivateIP), http.StatusBadRequest, false},
		{"timeout", rd.ErrTimeout, http.StatusBadGateway, true},
		{"circuit open", circuitbreaker.ErrOpenState, http.StatusBadGateway, true},
		{"upstream 404", &rd.StatusError{StatusCode: 404}, http.StatusBadGateway, false},
		{"unreadable", rd.ErrReadabilityFailed, http.StatusBadGateway, false},
		{"too large", rd.ErrBodyTooLarge, http.StatusBadGateway, false},
		{"other", errors.New("connection reset by peer"), http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(reader.Handler{Reader: &stubReader{err: tt.err}}, "/reader?url=https://a.example/x")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Error     string `json:"error"`
				Retryable bool   `json:"retryable"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantRetryable, body.Retryable)
		})
	}
}

func TestHandler_PrivateTargetAgainstRealReader(t *testing.T) {
	cfg := rd.DefaultConfig()
	r, err := rd.New(cfg, nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	reader.Register(mux, r, nil)
	rec := get(mux, "/reader?url=http://127.0.0.1:8080/admin")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed")
}
