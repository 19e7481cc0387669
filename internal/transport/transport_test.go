package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dogsync/pkg/errors"
)

func TestOAuthAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&OAuthAuth{Token: "secret"}).Apply(req)
	assert.Equal(t, "OAuth secret", req.Header.Get("Authorization"))

	empty := &http.Request{Header: make(http.Header)}
	(&OAuthAuth{}).Apply(empty)
	assert.Empty(t, empty.Header.Get("Authorization"))
}

func TestBearerAndNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&BearerAuth{Token: "t"}).Apply(req)
	assert.Equal(t, "Bearer t", req.Header.Get("Authorization"))

	none := &http.Request{Header: make(http.Header)}
	(&NoAuth{}).Apply(none)
	assert.Empty(t, none.Header)
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OAuth key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	c := New("test", WithAuth(&OAuthAuth{Token: "key"}))
	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.Equal(t, "ok", out.Message)
}

func TestCheckResponseErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{"not found", http.StatusNotFound, `{"description":"Resource not found.","error":"DiskNotFoundError"}`, errors.ErrNotFound, "Resource not found."},
		{"unauthorized", http.StatusUnauthorized, `{"message":"bad token"}`, errors.ErrUnauthorized, "bad token"},
		{"conflict", http.StatusConflict, `{"error":"DiskPathPointsToExistentDirectoryError"}`, errors.ErrAlreadyExists, "DiskPathPointsToExistentDirectoryError"},
		{"rate limited", http.StatusTooManyRequests, `slow down`, errors.ErrRateLimited, "slow down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New("test").GetJSON(context.Background(), srv.URL, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, "test", apiErr.API)
		})
	}
}

func TestDecodeResponseBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New("test").GetJSON(context.Background(), srv.URL, &out)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestReadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	c := New("test")
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	data, err := ReadBody(resp, c.API())
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New("test").Get(context.Background(), url)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewRateLimiter(3)
	l.now = func() time.Time { return now }

	assert.True(t, l.tryAcquire())
	assert.True(t, l.tryAcquire())
	assert.True(t, l.tryAcquire())
	assert.False(t, l.tryAcquire())

	now = now.Add(500 * time.Millisecond)
	assert.False(t, l.tryAcquire())

	now = now.Add(501 * time.Millisecond)
	assert.True(t, l.tryAcquire())
}

func TestRateLimiterWaitCanceled(t *testing.T) {
	l := NewRateLimiter(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiterDisabled(t *testing.T) {
	var nilLimiter *RateLimiter
	assert.NoError(t, nilLimiter.Wait(context.Background()))
	assert.NoError(t, NewRateLimiter(0).Wait(context.Background()))
}

func TestClientRateLimited(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("test", WithRateLimit(2))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	for i := 0; i < 3; i++ {
		err := c.GetJSON(ctx, srv.URL, nil)
		if i < 2 {
			require.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		}
	}
	assert.EqualValues(t, 2, hits.Load())
}
