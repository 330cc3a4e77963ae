package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/modpanel/cli/internal/api"
)

const (
	DefaultAnnounceDuration = 8.0

	msgInvalidUserID       = "Enter a valid numeric UserId."
	msgInvalidBanMinutes   = "Ban minutes must be 0 or higher."
	msgEmptyAnnouncement   = "Enter an announcement message."
	msgInvalidDuration     = "Announcement duration must be a positive number of seconds."
	msgEmptyPassword       = "Enter the panel password."
	msgStateUnavailable    = "State endpoint not available."
	msgLoginFailedFallback = "Login failed."
)

var userIDPattern = regexp.MustCompile(`^\d+$`)

// ParseUserID accepts a decimal user id, ignoring surrounding whitespace.
func ParseUserID(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if !userIDPattern.MatchString(value) {
		return 0, api.NewValidationError(msgInvalidUserID)
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, api.NewValidationError(msgInvalidUserID)
	}
	return id, nil
}

// ParseBanMinutes reads a ban length in minutes. Empty means permanent (0).
// durationSeconds is minutes*60 rounded down.
func ParseBanMinutes(raw string) (minutes float64, durationSeconds int64, err error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, 0, nil
	}

	minutes, err = strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		return 0, 0, api.NewValidationError(msgInvalidBanMinutes)
	}
	return minutes, int64(math.Floor(minutes * 60)), nil
}

// ParseAnnouncement builds an Announce command. An empty duration means
// DefaultAnnounceDuration seconds.
func ParseAnnouncement(message, duration string) (api.Announce, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return api.Announce{}, api.NewValidationError(msgEmptyAnnouncement)
	}

	seconds := DefaultAnnounceDuration
	if d := strings.TrimSpace(duration); d != "" {
		parsed, err := strconv.ParseFloat(d, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
			return api.Announce{}, api.NewValidationError(msgInvalidDuration)
		}
		seconds = parsed
	}

	return api.Announce{Message: message, Duration: seconds}, nil
}

func normalizeReason(reason string) string {
	return strings.TrimSpace(reason)
}

func banAck(minutes float64) string {
	if minutes == 0 {
		return "Permanent ban set."
	}
	return "Banned for " + strconv.FormatFloat(minutes, 'f', -1, 64) + " minutes."
}

func shutdownAck(enabled bool) string {
	if enabled {
		return "Shutdown Mode is now ON."
	}
	return "Shutdown Mode is now OFF."
}
