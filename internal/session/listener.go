package session

import "github.com/modpanel/cli/internal/api"

// Area names a status line owned by one group of actions.
type Area string

const (
	AreaLogin      Area = "login"
	AreaConnection Area = "connection"
	// AreaHint carries the one-line shutdown mode summary.
	AreaHint     Area = "hint"
	AreaShutdown Area = "shutdown"
	AreaAnnounce Area = "announce"
	AreaPlayer   Area = "player"
	AreaWhoAmI   Area = "whoami"
	AreaInspect  Area = "inspect"
)

// Tone tells the UI how to style a status text.
type Tone string

const (
	ToneProgress Tone = "progress"
	ToneOK       Tone = "ok"
	ToneBad      Tone = "bad"
	TonePlain    Tone = "plain"
)

// Listener receives every change the Controller wants shown. Calls are made
// from whichever goroutine ran the operation, never while the Controller holds
// its lock.
type Listener interface {
	StateChanged(State)
	Navigate(View)
	ServiceStateChanged(api.ServiceState)
	Status(area Area, text string, tone Tone)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnStateChanged        func(State)
	OnNavigate            func(View)
	OnServiceStateChanged func(api.ServiceState)
	OnStatus              func(Area, string, Tone)
}

var _ Listener = ListenerFuncs{}

func (f ListenerFuncs) StateChanged(s State) {
	if f.OnStateChanged != nil {
		f.OnStateChanged(s)
	}
}

func (f ListenerFuncs) Navigate(v View) {
	if f.OnNavigate != nil {
		f.OnNavigate(v)
	}
}

func (f ListenerFuncs) ServiceStateChanged(s api.ServiceState) {
	if f.OnServiceStateChanged != nil {
		f.OnServiceStateChanged(s)
	}
}

func (f ListenerFuncs) Status(area Area, text string, tone Tone) {
	if f.OnStatus != nil {
		f.OnStatus(area, text, tone)
	}
}
