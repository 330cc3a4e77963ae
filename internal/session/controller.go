// Package session drives the operator workflow on top of the API client:
// login, entering the panel, refreshing service state, dispatching moderation
// commands and logging out. It owns the authentication state machine and
// reports every change to a Listener.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/credentials"
	"github.com/modpanel/cli/internal/logger"
	"golang.org/x/sync/singleflight"
)

// ErrSessionEnded reports that the server rejected the credential while a
// watch or panel was running.
var ErrSessionEnded = errors.New("session ended")

type Controller struct {
	client *api.Client
	store  credentials.Store

	mu       sync.Mutex
	state    State
	view     View
	service  *api.ServiceState
	statuses map[Area]string
	listener Listener

	refreshes singleflight.Group
}

// NewController wires a controller to client and subscribes it to the
// client's auth rejections. listener may be nil.
func NewController(client *api.Client, listener Listener) *Controller {
	c := &Controller{
		client:   client,
		store:    client.Credentials(),
		state:    StateUnauthenticated,
		view:     ViewLogin,
		statuses: make(map[Area]string),
		listener: listener,
	}
	client.OnAuthRejected(c.handleAuthRejected)
	return c
}

// SetListener replaces the listener. Pass nil to stop receiving events.
func (c *Controller) SetListener(listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = listener
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// ServiceState returns the last published state, if any.
func (c *Controller) ServiceState() (api.ServiceState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.service == nil {
		return api.ServiceState{}, false
	}
	return *c.service, true
}

// StatusText returns the current text of area.
func (c *Controller) StatusText(area Area) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[area]
}

// ProbeLogin checks for an existing session. A failure only means nobody is
// logged in yet and is not reported.
func (c *Controller) ProbeLogin(ctx context.Context) bool {
	if _, err := c.client.Me(ctx); err != nil {
		logger.Debug("No existing session: %v", err)
		return false
	}

	c.setState(StateAuthenticated)
	c.navigate(ViewPanel)
	return true
}

// Login submits password. In bearer mode the returned token is stored by the
// client before the controller moves to the panel.
func (c *Controller) Login(ctx context.Context, password string) error {
	if password == "" {
		err := api.NewValidationError(msgEmptyPassword)
		c.setStatus(AreaLogin, err.Error(), ToneBad)
		return err
	}

	c.setState(StateAuthenticating)
	c.setStatus(AreaLogin, "Logging in…", ToneProgress)

	if _, err := c.client.Login(ctx, password); err != nil {
		c.setState(StateError)
		c.setStatus(AreaLogin, errorText(err, msgLoginFailedFallback), ToneBad)
		return err
	}

	c.setState(StateAuthenticated)
	c.setStatus(AreaLogin, "Logged in.", ToneOK)
	c.navigate(ViewPanel)
	return nil
}

// EnterPanel verifies the session and loads the service state. Any failure
// clears the credential and sends the UI back to the login view.
func (c *Controller) EnterPanel(ctx context.Context) error {
	c.mu.Lock()
	c.view = ViewPanel
	c.mu.Unlock()

	c.setState(StateAuthenticating)
	c.setStatus(AreaConnection, "Connecting…", ToneProgress)

	if _, err := c.client.Me(ctx); err != nil {
		c.returnToLogin()
		return err
	}

	if _, err := c.Refresh(ctx); err != nil {
		c.returnToLogin()
		return err
	}

	c.setState(StateAuthenticated)
	c.setStatus(AreaConnection, "Connected", ToneOK)
	return nil
}

// Refresh fetches and publishes the service state. Concurrent calls share one
// request.
func (c *Controller) Refresh(ctx context.Context) (api.ServiceState, error) {
	result, err, _ := c.refreshes.Do("state", func() (any, error) {
		state, err := c.client.State(ctx)
		if err != nil {
			return nil, err
		}
		c.publish(state)
		return state, nil
	})
	if err != nil {
		return api.ServiceState{}, err
	}
	return result.(api.ServiceState), nil
}

// Reload is the operator-triggered refresh: it clears the action status
// lines before fetching.
func (c *Controller) Reload(ctx context.Context) error {
	c.setStatus(AreaConnection, "Connected", ToneOK)
	for _, area := range []Area{AreaShutdown, AreaAnnounce, AreaPlayer} {
		c.setStatus(area, "", TonePlain)
	}

	if _, err := c.Refresh(ctx); err != nil {
		c.setStatus(AreaHint, msgStateUnavailable, ToneBad)
		return err
	}
	return nil
}

// WhoAmI fetches the identity payload and renders it in AreaWhoAmI.
func (c *Controller) WhoAmI(ctx context.Context) (any, error) {
	return c.inspect(ctx, AreaWhoAmI, c.client.Me)
}

// InspectState fetches /state as-is and renders it in AreaInspect.
func (c *Controller) InspectState(ctx context.Context) (any, error) {
	return c.inspect(ctx, AreaInspect, c.client.RawState)
}

func (c *Controller) inspect(ctx context.Context, area Area, fetch func(context.Context) (any, error)) (any, error) {
	c.setStatus(area, "Loading…", ToneProgress)

	data, err := fetch(ctx)
	if err != nil {
		c.setStatus(area, renderJSON(map[string]any{"error": err.Error()}), ToneBad)
		return nil, err
	}

	c.setStatus(area, renderJSON(data), TonePlain)
	return data, nil
}

// Logout ends the session. The remote call is best effort; the local
// credential is always cleared.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.client.Logout(ctx); err != nil {
		logger.Debug("Remote logout failed: %v", err)
	}

	err := c.store.Clear()
	c.dropServiceState()
	c.setState(StateUnauthenticated)
	c.setStatus(AreaConnection, "Not logged in", ToneBad)
	c.navigate(ViewLogin)
	return err
}

// SetShutdown turns shutdown mode on or off, optionally kicking everyone
// already connected, then republishes the refreshed state.
func (c *Controller) SetShutdown(ctx context.Context, enabled, kickExisting bool) error {
	err := c.dispatch(ctx, AreaShutdown, "Applying…", func() (api.Command, string, error) {
		return api.ShutdownToggle{Enabled: enabled, KickExisting: kickExisting}, shutdownAck(enabled), nil
	})
	if err != nil {
		return err
	}

	if _, err := c.Refresh(ctx); err != nil {
		logger.Debug("State refresh after shutdown toggle failed: %v", err)
		c.setStatus(AreaHint, msgStateUnavailable, ToneBad)
	}
	return nil
}

// Announce broadcasts message for duration seconds (empty means the default).
func (c *Controller) Announce(ctx context.Context, message, duration string) error {
	return c.dispatch(ctx, AreaAnnounce, "Sending…", func() (api.Command, string, error) {
		cmd, err := ParseAnnouncement(message, duration)
		return cmd, "Announcement sent.", err
	})
}

func (c *Controller) Warn(ctx context.Context, userID, reason string) error {
	return c.dispatch(ctx, AreaPlayer, "Sending warning…", func() (api.Command, string, error) {
		id, err := ParseUserID(userID)
		return api.Warn{UserID: id, Reason: normalizeReason(reason)}, "Warn sent.", err
	})
}

func (c *Controller) Kick(ctx context.Context, userID, reason string) error {
	return c.dispatch(ctx, AreaPlayer, "Kicking…", func() (api.Command, string, error) {
		id, err := ParseUserID(userID)
		return api.Kick{UserID: id, Reason: normalizeReason(reason)}, "Kick command sent.", err
	})
}

// Ban bans userID for minutes (empty or 0 is permanent).
func (c *Controller) Ban(ctx context.Context, userID, reason, minutes string) error {
	return c.dispatch(ctx, AreaPlayer, "Banning…", func() (api.Command, string, error) {
		m, seconds, err := ParseBanMinutes(minutes)
		if err != nil {
			return nil, "", err
		}
		id, err := ParseUserID(userID)
		if err != nil {
			return nil, "", err
		}
		return api.Ban{UserID: id, Reason: normalizeReason(reason), DurationSeconds: seconds}, banAck(m), nil
	})
}

func (c *Controller) Unban(ctx context.Context, userID string) error {
	return c.dispatch(ctx, AreaPlayer, "Unbanning…", func() (api.Command, string, error) {
		id, err := ParseUserID(userID)
		return api.Unban{UserID: id}, "Unbanned.", err
	})
}

func (c *Controller) ClearWarnings(ctx context.Context, userID string) error {
	return c.dispatch(ctx, AreaPlayer, "Clearing warnings…", func() (api.Command, string, error) {
		id, err := ParseUserID(userID)
		return api.ClearWarnings{UserID: id}, "Warnings cleared.", err
	})
}

// dispatch shows progress in area, validates via build and submits the
// command. The area always ends on the ack or the error message.
func (c *Controller) dispatch(ctx context.Context, area Area, progress string, build func() (api.Command, string, error)) error {
	c.setStatus(area, progress, ToneProgress)

	cmd, ack, err := build()
	if err != nil {
		c.setStatus(area, err.Error(), ToneBad)
		return err
	}

	if _, err := c.client.Dispatch(ctx, cmd); err != nil {
		c.setStatus(area, err.Error(), ToneBad)
		return err
	}

	c.setStatus(area, ack, ToneOK)
	return nil
}

// Watch refreshes the state every interval until ctx is done. Transient
// failures are shown in AreaHint; an auth rejection stops the loop with
// ErrSessionEnded.
func (c *Controller) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("watch interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := c.Refresh(ctx); err != nil {
			if api.IsAuthRejection(err) {
				return ErrSessionEnded
			}
			if ctx.Err() != nil {
				return nil
			}
			logger.Debug("State refresh failed: %v", err)
			c.setStatus(AreaHint, msgStateUnavailable, ToneBad)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (c *Controller) handleAuthRejected(apiErr *api.Error) {
	logger.Debug("Credential rejected (%d), clearing session", apiErr.Status)
	c.returnToLogin()
}

// returnToLogin clears the credential and leaves the panel. It is safe to call
// more than once; Navigate is only emitted on the first call.
func (c *Controller) returnToLogin() {
	if err := c.store.Clear(); err != nil {
		logger.Warning("Failed to clear stored credential: %v", err)
	}

	c.dropServiceState()
	c.setState(StateUnauthenticated)

	c.mu.Lock()
	inPanel := c.view == ViewPanel
	c.mu.Unlock()
	if inPanel {
		c.setStatus(AreaConnection, "Not logged in", ToneBad)
		c.navigate(ViewLogin)
	}
}

// dropServiceState forgets the last snapshot once the session is gone.
func (c *Controller) dropServiceState() {
	c.mu.Lock()
	c.service = nil
	c.mu.Unlock()
	c.setStatus(AreaHint, "", TonePlain)
}

func (c *Controller) publish(state api.ServiceState) {
	c.mu.Lock()
	c.service = &state
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.ServiceStateChanged(state)
	}
	c.setStatus(AreaHint, state.Hint(), TonePlain)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	l := c.listener
	c.mu.Unlock()

	if changed && l != nil {
		l.StateChanged(s)
	}
}

func (c *Controller) navigate(v View) {
	c.mu.Lock()
	changed := c.view != v
	c.view = v
	l := c.listener
	c.mu.Unlock()

	if changed && l != nil {
		l.Navigate(v)
	}
}

func (c *Controller) setStatus(area Area, text string, tone Tone) {
	c.mu.Lock()
	c.statuses[area] = text
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.Status(area, text, tone)
	}
}

func errorText(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

func renderJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}
