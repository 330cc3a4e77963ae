package utils

import (
	"github.com/modpanel/cli/internal/api"
	"github.com/modpanel/cli/internal/logger"
	"github.com/modpanel/cli/internal/session"
)

// ConsoleListener reports controller events through the logger. It is the
// listener used by the one-shot commands.
type ConsoleListener struct {
	// Areas limits printed statuses to these areas. Nil prints every area.
	Areas []session.Area
	// OnServiceState, if set, receives every published state.
	OnServiceState func(api.ServiceState)
}

var _ session.Listener = (*ConsoleListener)(nil)

func (l *ConsoleListener) StateChanged(s session.State) {
	logger.Debug("Session state: %s", s)
}

func (l *ConsoleListener) Navigate(v session.View) {
	logger.Debug("View: %s", v)
}

func (l *ConsoleListener) ServiceStateChanged(s api.ServiceState) {
	if l.OnServiceState != nil {
		l.OnServiceState(s)
	}
}

func (l *ConsoleListener) Status(area session.Area, text string, tone session.Tone) {
	if text == "" || !l.wants(area) {
		return
	}

	switch tone {
	case session.ToneOK:
		logger.Success("%s", text)
	case session.ToneBad:
		logger.Error("%s", text)
	case session.ToneProgress:
		logger.Debug("%s", text)
	default:
		logger.Info("%s", text)
	}
}

func (l *ConsoleListener) wants(area session.Area) bool {
	if l.Areas == nil {
		return true
	}
	for _, a := range l.Areas {
		if a == area {
			return true
		}
	}
	return false
}
