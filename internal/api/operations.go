package api

import (
	"context"
	"net/http"
)

const (
	pathMe          = "/me"
	pathLogin       = "/login"
	pathLogout      = "/logout"
	pathState       = "/state"
	pathLegacyState = "/shutdown/state"
)

// Me retrieves the identity of the current session
func (c *Client) Me(ctx context.Context) (any, error) {
	return c.Request(ctx, http.MethodGet, pathMe, nil)
}

// Login exchanges the panel password for a session. In bearer mode a returned
// token replaces the stored credential; cookie-mode servers set the session
// cookie instead and no token is stored.
func (c *Client) Login(ctx context.Context, password string) (*LoginResponse, error) {
	data, err := c.Request(ctx, http.MethodPost, pathLogin, LoginRequest{Password: password})
	if err != nil {
		return nil, err
	}

	response := &LoginResponse{}
	if body, ok := data.(map[string]any); ok {
		if token, ok := body["token"].(string); ok {
			response.Token = token
		}
	}

	if c.AuthMode == AuthModeBearer && response.Token != "" {
		if err := c.credentials.Set(response.Token); err != nil {
			return nil, err
		}
	}

	return response, nil
}

// Logout ends the server-side session. It does not touch the local credential.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodPost, pathLogout, nil)
	return err
}

// State fetches the service state from /state, falling back to the legacy
// /shutdown/state on older servers.
func (c *Client) State(ctx context.Context) (ServiceState, error) {
	data, err := c.RequestWithFallback(ctx, pathState, pathLegacyState, http.MethodGet, nil)
	if err != nil {
		return ServiceState{}, err
	}
	return NormalizeState(data), nil
}

// RawState returns the /state body as-is, without the legacy fallback.
func (c *Client) RawState(ctx context.Context) (any, error) {
	return c.Request(ctx, http.MethodGet, pathState, nil)
}

// Dispatch submits a moderation command to /cmd/<name>, falling back to /<name>.
func (c *Client) Dispatch(ctx context.Context, cmd Command) (any, error) {
	primary, fallback := CommandPaths(cmd)
	return c.RequestWithFallback(ctx, primary, fallback, http.MethodPost, cmd)
}
