package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/modpanel/cli/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method        string
	Path          string
	ContentType   string
	Authorization string
	Cookie        string
	RequestID     string
	Body          string
}

// fakeServer records every request and answers from a path → handler map.
type fakeServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]http.HandlerFunc
}

func newFakeServer(t *testing.T, routes map[string]http.HandlerFunc) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{routes: routes}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		fs.mu.Lock()
		fs.requests = append(fs.requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			Cookie:        r.Header.Get("Cookie"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		fs.mu.Unlock()

		if h, ok := fs.routes[r.URL.Path]; ok {
			h(w, r)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Not found"})
	}))
	t.Cleanup(server.Close)
	return fs, server
}

func (fs *fakeServer) paths() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []string
	for _, r := range fs.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (fs *fakeServer) last() recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[len(fs.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func okJSON(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, v) }
}

func newTestClient(t *testing.T, baseURL string, mode AuthMode, store credentials.Store) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{
		BaseURL:     baseURL,
		AuthMode:    mode,
		Credentials: store,
		Timeout:     2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_NormalizesBaseURL(t *testing.T) {
	c, err := NewClient(ClientConfig{BaseURL: "mod.example.com//"})
	require.NoError(t, err)
	assert.Equal(t, "https://mod.example.com", c.BaseURL)
	assert.Equal(t, AuthModeBearer, c.AuthMode)
	assert.Equal(t, "https://mod.example.com/state", c.buildURL("state"))

	_, err = NewClient(ClientConfig{BaseURL: ""})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "https://x", AuthMode: "basic"})
	assert.Error(t, err)
}

func TestRequest_ContentTypeOnlyWithBody(t *testing.T) {
	fs, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/me":       okJSON(map[string]any{"user": "op"}),
		"/cmd/kick": okJSON(map[string]any{"ok": true}),
	})
	c := newTestClient(t, server.URL+"/", AuthModeBearer, credentials.NewMemoryStore())
	ctx := context.Background()

	_, err := c.Request(ctx, http.MethodGet, "/me", nil)
	require.NoError(t, err)
	get := fs.last()
	assert.Empty(t, get.ContentType, "bodyless GET must not declare a content type")
	assert.NotEmpty(t, get.RequestID)

	_, err = c.Request(ctx, http.MethodPost, "/logout", nil)
	require.Error(t, err)
	assert.Empty(t, fs.last().ContentType, "bodyless POST must not declare a content type")

	_, err = c.Request(ctx, http.MethodPost, "/cmd/kick", Kick{UserID: 42, Reason: "spam"})
	require.NoError(t, err)
	post := fs.last()
	assert.Equal(t, "application/json", post.ContentType)
	assert.JSONEq(t, `{"userId":42,"reason":"spam"}`, post.Body)
}

func TestRequest_AuthorizationIffToken(t *testing.T) {
	for _, mode := range []AuthMode{AuthModeBearer, AuthModeCookie} {
		t.Run(string(mode), func(t *testing.T) {
			fs, server := newFakeServer(t, map[string]http.HandlerFunc{
				"/me": okJSON(map[string]any{}),
			})
			store := credentials.NewMemoryStore()
			c := newTestClient(t, server.URL, mode, store)
			ctx := context.Background()

			_, err := c.Me(ctx)
			require.NoError(t, err)
			assert.Empty(t, fs.last().Authorization)

			require.NoError(t, store.Set("abc"))
			_, err = c.Me(ctx)
			require.NoError(t, err)
			assert.Equal(t, "Bearer abc", fs.last().Authorization)

			require.NoError(t, store.Clear())
			_, err = c.Me(ctx)
			require.NoError(t, err)
			assert.Empty(t, fs.last().Authorization, "no stale credential after Clear")
		})
	}
}

func TestRequest_CookieModeCarriesSessionCookie(t *testing.T) {
	fs, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "modpanel_session", Value: "s1", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		},
		"/me": okJSON(map[string]any{"user": "op"}),
	})
	store := credentials.NewMemoryStore()
	c := newTestClient(t, server.URL, AuthModeCookie, store)
	ctx := context.Background()

	resp, err := c.Login(ctx, "correct")
	require.NoError(t, err)
	assert.Empty(t, resp.Token)
	_, hasToken := store.Get()
	assert.False(t, hasToken, "cookie mode stores no token")

	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "modpanel_session=s1", fs.last().Cookie)
	assert.Empty(t, fs.last().Authorization)

	// A token, when present, is the only carrier
	require.NoError(t, store.Set("abc"))
	_, err = c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", fs.last().Authorization)
	assert.Empty(t, fs.last().Cookie)
}

func TestRequest_BearerModeIgnoresCookies(t *testing.T) {
	fs, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "modpanel_session", Value: "s1", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]any{"token": "abc"})
		},
		"/me": okJSON(map[string]any{}),
	})
	store := credentials.NewMemoryStore()
	c := newTestClient(t, server.URL, AuthModeBearer, store)

	_, err := c.Login(context.Background(), "correct")
	require.NoError(t, err)
	require.NoError(t, store.Clear())

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fs.last().Cookie)
	assert.Empty(t, fs.last().Authorization)
}

func TestRequest_ParsesBodies(t *testing.T) {
	_, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/json": okJSON(map[string]any{"a": 1}),
		"/broken": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		},
		"/empty": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNoContent)
		},
		"/text": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("ok"))
		},
		"/charset": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(`{"b":true}`))
		},
		"/problem": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/problem+json")
			_, _ = w.Write([]byte(`{"title":"x"}`))
		},
	})
	c := newTestClient(t, server.URL, AuthModeBearer, nil)
	ctx := context.Background()

	data, err := c.Request(ctx, http.MethodGet, "/json", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, data)

	data, err = c.Request(ctx, http.MethodGet, "/broken", nil)
	require.NoError(t, err, "undecodable success bodies are not errors")
	assert.Nil(t, data)

	data, err = c.Request(ctx, http.MethodGet, "/empty", nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = c.Request(ctx, http.MethodGet, "/text", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "ok"}, data)

	data, err = c.Request(ctx, http.MethodGet, "/charset", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": true}, data)

	data, err = c.Request(ctx, http.MethodGet, "/problem", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": `{"title":"x"}`}, data)
}

func TestRequest_ErrorMessages(t *testing.T) {
	_, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/error": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Bad user", "message": "ignored"})
		},
		"/message": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]any{"message": "Already banned"})
		},
		"/plain": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		},
		"/broken": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("{"))
		},
	})
	c := newTestClient(t, server.URL, AuthModeBearer, nil)
	ctx := context.Background()

	tests := []struct {
		path    string
		status  int
		message string
		data    any
	}{
		{"/error", 400, "Bad user", map[string]any{"error": "Bad user", "message": "ignored"}},
		{"/message", 409, "Already banned", map[string]any{"message": "Already banned"}},
		{"/plain", 502, "Request failed: 502", map[string]any{"text": "upstream exploded\n"}},
		{"/broken", 500, "Request failed: 500", nil},
	}

	for _, tt := range tests {
		_, err := c.Request(ctx, http.MethodGet, tt.path, nil)
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr, tt.path)
		assert.Equal(t, KindRemote, apiErr.Kind, tt.path)
		assert.Equal(t, tt.status, apiErr.Status, tt.path)
		assert.Equal(t, tt.message, apiErr.Error(), tt.path)
		assert.Equal(t, tt.data, apiErr.Data, tt.path)
	}
}

func TestRequest_AuthRejectionSignalsObservers(t *testing.T) {
	_, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/me": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		},
		"/state": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]any{})
		},
	})
	c := newTestClient(t, server.URL, AuthModeBearer, nil)

	var seen []int
	c.OnAuthRejected(func(e *Error) { seen = append(seen, e.Status) })

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthRejection(err))
	assert.Equal(t, "Unauthorized", err.Error())

	_, err = c.RawState(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthRejection(err))

	assert.Equal(t, []int{401, 403}, seen)
}

func TestRequest_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := newTestClient(t, url, AuthModeBearer, nil)
	_, err := c.Me(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindTransport, apiErr.Kind)
	assert.Zero(t, apiErr.Status)
	assert.NotNil(t, apiErr.Unwrap())
}

func TestRequestWithFallback(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		fs, server := newFakeServer(t, map[string]http.HandlerFunc{
			"/new": okJSON(map[string]any{"from": "new"}),
			"/old": okJSON(map[string]any{"from": "old"}),
		})
		c := newTestClient(t, server.URL, AuthModeBearer, nil)

		data, err := c.RequestWithFallback(context.Background(), "/new", "/old", http.MethodGet, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"from": "new"}, data)
		assert.Equal(t, []string{"GET /new"}, fs.paths())
	})

	t.Run("primary fails, fallback succeeds", func(t *testing.T) {
		fs, server := newFakeServer(t, map[string]http.HandlerFunc{
			"/old": okJSON(map[string]any{"from": "old"}),
		})
		c := newTestClient(t, server.URL, AuthModeBearer, nil)

		data, err := c.RequestWithFallback(context.Background(), "/new", "/old", http.MethodPost, map[string]any{"x": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"from": "old"}, data)
		assert.Equal(t, []string{"POST /new", "POST /old"}, fs.paths())
		assert.JSONEq(t, `{"x":1}`, fs.last().Body, "fallback repeats the identical body")
	})

	t.Run("both fail", func(t *testing.T) {
		fs, server := newFakeServer(t, map[string]http.HandlerFunc{
			"/new": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "primary down"})
			},
			"/old": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "fallback down"})
			},
		})
		c := newTestClient(t, server.URL, AuthModeBearer, nil)

		_, err := c.RequestWithFallback(context.Background(), "/new", "/old", http.MethodGet, nil)
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "fallback down", apiErr.Message)
		assert.Equal(t, 503, apiErr.Status)
		assert.Len(t, fs.paths(), 2, "only one fallback attempt")
	})

	t.Run("no fallback path", func(t *testing.T) {
		fs, server := newFakeServer(t, nil)
		c := newTestClient(t, server.URL, AuthModeBearer, nil)

		_, err := c.RequestWithFallback(context.Background(), "/new", "", http.MethodGet, nil)
		require.Error(t, err)
		assert.Len(t, fs.paths(), 1)
	})

	t.Run("cancelled context is not retried", func(t *testing.T) {
		fs, server := newFakeServer(t, nil)
		c := newTestClient(t, server.URL, AuthModeBearer, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.RequestWithFallback(ctx, "/new", "/old", http.MethodGet, nil)
		require.Error(t, err)
		assert.Empty(t, fs.paths())
	})
}

func TestState_FallsBackToLegacyPath(t *testing.T) {
	fs, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/shutdown/state": okJSON(map[string]any{"enabled": true}),
	})
	c := newTestClient(t, server.URL, AuthModeBearer, nil)

	state, err := c.State(context.Background())
	require.NoError(t, err)
	assert.True(t, state.ShutdownEnabled)
	assert.Equal(t, []string{"GET /state", "GET /shutdown/state"}, fs.paths())
}

func TestLogin_StoresTokenAndUsesItNext(t *testing.T) {
	fs, server := newFakeServer(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			var req LoginRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "correct" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid password"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"token": "abc"})
		},
		"/state": okJSON(map[string]any{"shutdownEnabled": false, "updatedAt": 1700000000000}),
	})
	store := credentials.NewMemoryStore()
	c := newTestClient(t, server.URL, AuthModeBearer, store)
	ctx := context.Background()

	_, err := c.Login(ctx, "wrong")
	require.Error(t, err)
	_, ok := store.Get()
	assert.False(t, ok)

	resp, err := c.Login(ctx, "correct")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)
	token, _ := store.Get()
	assert.Equal(t, "abc", token)

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.False(t, state.ShutdownEnabled)
	assert.Equal(t, "Bearer abc", fs.last().Authorization)
	assert.Equal(t, "/state", fs.last().Path)
}

func TestDispatch_PathsAndBodies(t *testing.T) {
	tests := []struct {
		cmd      Command
		primary  string
		fallback string
		body     string
	}{
		{ShutdownToggle{Enabled: true, KickExisting: false}, "/cmd/shutdown", "/shutdown", `{"enabled":true,"kickExisting":false}`},
		{Announce{Message: "hi", Duration: 8}, "/cmd/announce", "/announce", `{"message":"hi","duration":8}`},
		{Warn{UserID: 1, Reason: "r"}, "/cmd/warn", "/warn", `{"userId":1,"reason":"r"}`},
		{Kick{UserID: 2, Reason: ""}, "/cmd/kick", "/kick", `{"userId":2,"reason":""}`},
		{Ban{UserID: 3, Reason: "x", DurationSeconds: 90}, "/cmd/ban", "/ban", `{"userId":3,"reason":"x","durationSeconds":90}`},
		{Unban{UserID: 4}, "/cmd/unban", "/unban", `{"userId":4}`},
		{ClearWarnings{UserID: 5}, "/cmd/clearwarns", "/clearwarns", `{"userId":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.CommandName(), func(t *testing.T) {
			primary, fallback := CommandPaths(tt.cmd)
			assert.Equal(t, tt.primary, primary)
			assert.Equal(t, tt.fallback, fallback)

			fs, server := newFakeServer(t, map[string]http.HandlerFunc{
				tt.fallback: okJSON(map[string]any{"ok": true}),
			})
			c := newTestClient(t, server.URL, AuthModeBearer, nil)

			_, err := c.Dispatch(context.Background(), tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, []string{"POST " + tt.primary, "POST " + tt.fallback}, fs.paths())
			assert.JSONEq(t, tt.body, fs.last().Body)
		})
	}
}
