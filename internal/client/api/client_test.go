package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtereshin/medtrack/internal/common"
	"github.com/mtereshin/medtrack/internal/logging"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logging.NewDefault(testWriter{t}, slog.LevelDebug)
	c, err := NewClient(srv.URL+"/api", 5*time.Second, log, opts...)
	require.NoError(t, err)
	return c, srv
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestDo_RefreshesSessionOnceAndReplays(t *testing.T) {
	var resourceCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/reminders/", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&resourceCalls, 1)
		if n == 1 {
			// Session expired: the first attempt carries no fresh cookie.
			if _, err := r.Cookie("access_token"); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"medicine_name":"Paracetamol"}]`))
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "fresh"})
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newTestClient(t, mux)

	reminders, err := c.ListReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Paracetamol", reminders[0].MedicineName)

	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls), "exactly one refresh attempt")
	assert.EqualValues(t, 2, atomic.LoadInt32(&resourceCalls), "original call replayed once")
}

func TestDo_RefreshFailure_ExpiresSession(t *testing.T) {
	var refreshCalls int32
	expired := false

	mux := http.NewServeMux()
	mux.HandleFunc("/api/reminders/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, _ := newTestClient(t, mux, WithSessionExpiredHook(func() { expired = true }))

	_, err := c.ListReminders(context.Background())
	require.ErrorIs(t, err, common.ErrSessionExpired)
	assert.True(t, expired, "session-expired hook must fire")
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
}

func TestMe_ColdStartWithoutSession_StaysSilent(t *testing.T) {
	var hookCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c, _ := newTestClient(t, mux, WithSessionExpiredHook(func() { atomic.AddInt32(&hookCalls, 1) }))

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, common.ErrSessionExpired)
	assert.Zero(t, atomic.LoadInt32(&hookCalls),
		"startup probe must not fire the session-expired hook")
}

func TestMe_ReplayStill401_StaysSilent(t *testing.T) {
	var hookCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newTestClient(t, mux, WithSessionExpiredHook(func() { atomic.AddInt32(&hookCalls, 1) }))

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, common.ErrSessionExpired)
	assert.Zero(t, atomic.LoadInt32(&hookCalls))
}

func TestDo_ReplayStill401_NoSecondRefresh(t *testing.T) {
	var resourceCalls, refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/reminders/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&resourceCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newTestClient(t, mux)

	_, err := c.ListReminders(context.Background())
	require.ErrorIs(t, err, common.ErrSessionExpired)
	assert.EqualValues(t, 2, atomic.LoadInt32(&resourceCalls), "one attempt plus one replay")
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls), "no refresh loop")
}

func TestLogin_BadCredentials_NoRefresh(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})

	c, _ := newTestClient(t, mux)

	_, err := c.Login(context.Background(), "user@example.com", []byte("wrong"))
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.Equal(t, KindAuth, apiErr.Kind)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.Zero(t, atomic.LoadInt32(&refreshCalls), "login 401 must not trigger refresh")
}

func TestClient_CookiesPersistAcrossRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "abc"})
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "def"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":7,"email":"user@example.com"}}`))
	})
	mux.HandleFunc("/api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("access_token")
		if err != nil || c.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"email":"user@example.com"}`))
	})

	c, _ := newTestClient(t, mux)

	user, err := c.Login(context.Background(), "user@example.com", []byte("pw"))
	require.NoError(t, err)
	assert.EqualValues(t, 7, user.ID)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", me.Email)
}

func TestRefreshSession_CoalescesConcurrentAttempts(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusOK)
	})

	c, _ := newTestClient(t, mux)

	// Both callers observed generation 0 before hitting their 401s.
	require.NoError(t, c.refreshSession(context.Background(), 0))
	require.NoError(t, c.refreshSession(context.Background(), 0))

	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls),
		"second caller skips the refresh another request already performed")
}

func TestDo_NetworkErrorMapsToUnavailable(t *testing.T) {
	log := logging.NewDefault(testWriter{t}, slog.LevelDebug)
	c, err := NewClient("http://127.0.0.1:1/api", 500*time.Millisecond, log)
	require.NoError(t, err)

	_, err = c.ListReminders(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)
}
