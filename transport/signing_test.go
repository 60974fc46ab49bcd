package transport_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-client/internal/utils"
	"github.com/jrsteele09/go-session-client/sessions"
	"github.com/jrsteele09/go-session-client/transport"
)

type headerRecorder struct {
	mu   sync.Mutex
	last http.Header
}

func (h *headerRecorder) Get(key string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last.Get(key)
}

func echoHeaders(t *testing.T) (*httptest.Server, *headerRecorder) {
	t.Helper()
	seen := &headerRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.mu.Lock()
		seen.last = r.Header.Clone()
		seen.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestSigningTransport_SignedIn(t *testing.T) {
	srv, seen := echoHeaders(t)
	cache := sessions.NewCache()
	cache.Replace(sessions.Session{AccessToken: utils.Ptr("T1"), AccountID: utils.Ptr("42"), Roles: []string{}})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/rooms", nil)
	require.NoError(t, err)

	resp, err := transport.NewClient(cache, 5*time.Second).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "Bearer T1", seen.Get("Authorization"))
	require.Equal(t, "application/json", seen.Get("Accept"))
	require.Empty(t, req.Header.Get("Authorization"), "caller's request is not modified")
}

func TestSigningTransport_SignedOut(t *testing.T) {
	srv, seen := echoHeaders(t)
	cache := sessions.NewCache()

	resp, err := transport.NewClient(cache, 5*time.Second).Get(srv.URL + "/rooms")
	require.NoError(t, err)
	resp.Body.Close()

	require.Empty(t, seen.Get("Authorization"))
	require.Equal(t, "application/json", seen.Get("Accept"))
}

func TestSigningTransport_FollowsCacheChanges(t *testing.T) {
	srv, seen := echoHeaders(t)
	cache := sessions.NewCache()
	client := transport.NewClient(cache, 5*time.Second)

	cache.Replace(sessions.Session{AccessToken: utils.Ptr("T1"), AccountID: utils.Ptr("42")})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "Bearer T1", seen.Get("Authorization"))

	cache.Replace(sessions.Session{AccessToken: utils.Ptr("T2"), AccountID: utils.Ptr("42")})
	resp, err = client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "Bearer T2", seen.Get("Authorization"))

	cache.Clear()
	resp, err = client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, seen.Get("Authorization"))
}
