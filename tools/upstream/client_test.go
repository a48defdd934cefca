package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dishadvisor/tools/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDoer struct {
	calls  atomic.Int32
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.calls.Add(1)
	return m.doFunc(req)
}

func respond(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	}
}

func TestClient_GetJSON(t *testing.T) {
	tests := []struct {
		name     string
		doFunc   func(req *http.Request) (*http.Response, error)
		wantKind Kind
		wantErr  bool
		want     map[string]any
	}{
		{
			name:   "ok",
			doFunc: respond(http.StatusOK, `{"meals":[{"idMeal":"1"}]}`),
			want:   map[string]any{"meals": []any{map[string]any{"idMeal": "1"}}},
		},
		{
			name:     "server error is unavailable",
			doFunc:   respond(http.StatusBadGateway, `bad gateway`),
			wantErr:  true,
			wantKind: KindUpstreamUnavailable,
		},
		{
			name:     "not found status is unavailable, not a domain miss",
			doFunc:   respond(http.StatusNotFound, `nope`),
			wantErr:  true,
			wantKind: KindUpstreamUnavailable,
		},
		{
			name: "transport error is unavailable",
			doFunc: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantErr:  true,
			wantKind: KindUpstreamUnavailable,
		},
		{
			name:     "bad json is malformed",
			doFunc:   respond(http.StatusOK, `<html>`),
			wantErr:  true,
			wantKind: KindMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(ClientOpts{HTTPClient: &mockDoer{doFunc: tt.doFunc}})

			var got map[string]any
			err := c.GetJSON(context.Background(), "test.op", "https://api.test/filter.php", url.Values{"i": {"egg"}}, &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.Contains(t, err.Error(), "test.op")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_GetJSON_Request(t *testing.T) {
	var seen *http.Request
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		seen = req
		return respond(http.StatusOK, `{}`)(req)
	}}
	c := NewClient(ClientOpts{HTTPClient: doer, UserAgent: "tests"})

	var out map[string]any
	err := c.GetJSON(context.Background(), "op", "https://api.test/search", url.Values{"name": {"São Paulo"}, "count": {"1"}}, &out)
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, http.MethodGet, seen.Method)
	assert.Equal(t, "São Paulo", seen.URL.Query().Get("name"))
	assert.Equal(t, "1", seen.URL.Query().Get("count"))
	assert.Equal(t, "application/json", seen.Header.Get("Accept"))
	assert.Equal(t, "tests", seen.Header.Get("User-Agent"))

	deadline, ok := seen.Context().Deadline()
	assert.True(t, ok, "every outbound call carries a deadline")
	assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, 2*time.Second)
}

func TestClient_GetJSON_Cache(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemory()

	t.Run("second call is served from cache", func(t *testing.T) {
		doer := &mockDoer{doFunc: respond(http.StatusOK, `{"ok":true}`)}
		c := NewClient(ClientOpts{HTTPClient: doer, Cache: mem, CacheTTL: time.Minute})

		for i := 0; i < 3; i++ {
			var out map[string]any
			require.NoError(t, c.GetJSON(ctx, "op", "https://api.test/a", nil, &out))
			assert.Equal(t, true, out["ok"])
		}
		assert.Equal(t, int32(1), doer.calls.Load())
	})

	t.Run("malformed bodies are not cached", func(t *testing.T) {
		doer := &mockDoer{doFunc: respond(http.StatusOK, `not json`)}
		c := NewClient(ClientOpts{HTTPClient: doer, Cache: mem, CacheTTL: time.Minute})

		var out map[string]any
		require.Error(t, c.GetJSON(ctx, "op", "https://api.test/b", nil, &out))
		require.Error(t, c.GetJSON(ctx, "op", "https://api.test/b", nil, &out))
		assert.Equal(t, int32(2), doer.calls.Load())
	})

	t.Run("failures are not cached", func(t *testing.T) {
		doer := &mockDoer{doFunc: respond(http.StatusServiceUnavailable, ``)}
		c := NewClient(ClientOpts{HTTPClient: doer, Cache: mem, CacheTTL: time.Minute})

		var out map[string]any
		require.Error(t, c.GetJSON(ctx, "op", "https://api.test/c", nil, &out))
		_, ok, _ := mem.Get(ctx, "https://api.test/c")
		assert.False(t, ok)
	})
}

func TestClient_GetJSON_Canceled(t *testing.T) {
	doer := &mockDoer{doFunc: func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}}
	c := NewClient(ClientOpts{HTTPClient: doer, Timeout: 20 * time.Millisecond})

	var out map[string]any
	err := c.GetJSON(context.Background(), "op", "https://api.test/slow", nil, &out)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorKinds(t *testing.T) {
	base := NotFound("mealdb.search", "no recipe named %q", "Nothing")
	wrapped := fmt.Errorf("build shopping list: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsRetryable(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.True(t, IsInvalidInput(InvalidInput("op", "blank")))
	assert.True(t, IsMalformed(Malformed("op", errors.New("x"))))
	assert.Equal(t, `mealdb.search: not found: no recipe named "Nothing"`, base.Error())

	statusErr := &Error{Kind: KindUpstreamUnavailable, Op: "op", Status: 503, Err: errors.New("down")}
	assert.Equal(t, "op: upstream unavailable (status 503): down", statusErr.Error())
}
