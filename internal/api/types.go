package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/modpanel/cli/internal/credentials"
)

// AuthMode selects how the credential travels with each request.
type AuthMode string

const (
	// AuthModeBearer sends the stored token as "Authorization: Bearer <token>".
	AuthModeBearer AuthMode = "bearer"
	// AuthModeCookie relies on the session cookie set by /login.
	AuthModeCookie AuthMode = "cookie"
)

// Client represents the API client configuration
type Client struct {
	BaseURL   string
	AgentName string
	AuthMode  AuthMode

	credentials credentials.Store
	httpClient  *http.Client

	mu        sync.RWMutex
	observers []func(*Error)
}

// ClientConfig holds configuration for creating a new client
type ClientConfig struct {
	BaseURL     string
	AgentName   string
	AuthMode    AuthMode
	Credentials credentials.Store
	Timeout     time.Duration
	// HTTPClient overrides the default client; its Jar is never used.
	HTTPClient *http.Client
}

// LoginRequest represents the request payload for login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents the response from login.
// Token is only present in bearer-mode deployments.
type LoginResponse struct {
	Token string `json:"token,omitempty"`
}
