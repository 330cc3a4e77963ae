package api

// Command is one of the moderation commands the service accepts. The set is
// closed: only the types in this file implement it.
type Command interface {
	// CommandName is the endpoint name, served at /cmd/<name> and, on older
	// servers, at /<name>.
	CommandName() string
	isCommand()
}

type ShutdownToggle struct {
	Enabled      bool `json:"enabled"`
	KickExisting bool `json:"kickExisting"`
}

type Announce struct {
	Message string `json:"message"`
	// Duration is how long the announcement stays on screen, in seconds.
	Duration float64 `json:"duration"`
}

type Warn struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

type Kick struct {
	UserID int64  `json:"userId"`
	Reason string `json:"reason"`
}

// Ban with DurationSeconds == 0 is permanent.
type Ban struct {
	UserID          int64  `json:"userId"`
	Reason          string `json:"reason"`
	DurationSeconds int64  `json:"durationSeconds"`
}

type Unban struct {
	UserID int64 `json:"userId"`
}

type ClearWarnings struct {
	UserID int64 `json:"userId"`
}

func (ShutdownToggle) CommandName() string { return "shutdown" }
func (Announce) CommandName() string       { return "announce" }
func (Warn) CommandName() string           { return "warn" }
func (Kick) CommandName() string           { return "kick" }
func (Ban) CommandName() string            { return "ban" }
func (Unban) CommandName() string          { return "unban" }
func (ClearWarnings) CommandName() string  { return "clearwarns" }

func (ShutdownToggle) isCommand() {}
func (Announce) isCommand()       {}
func (Warn) isCommand()           {}
func (Kick) isCommand()           {}
func (Ban) isCommand()            {}
func (Unban) isCommand()          {}
func (ClearWarnings) isCommand()  {}

// CommandPaths returns the current and legacy endpoint for cmd.
func CommandPaths(cmd Command) (primary, fallback string) {
	name := cmd.CommandName()
	return "/cmd/" + name, "/" + name
}
