package session

import (
	"testing"

	"github.com/modpanel/cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = ParseUserID("  7 ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []string{"12a", "", " ", "-1", "1.5", "99999999999999999999999"} {
		_, err := ParseUserID(raw)
		require.Error(t, err, raw)
		assert.True(t, api.IsValidation(err), raw)
		assert.Equal(t, "Enter a valid numeric UserId.", err.Error(), raw)
	}
}

func TestParseBanMinutes(t *testing.T) {
	tests := []struct {
		raw     string
		minutes float64
		seconds int64
	}{
		{"", 0, 0},
		{"0", 0, 0},
		{"1.5", 1.5, 90},
		{"10", 10, 600},
		{"0.01", 0.01, 0},
	}
	for _, tt := range tests {
		minutes, seconds, err := ParseBanMinutes(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.minutes, minutes, tt.raw)
		assert.Equal(t, tt.seconds, seconds, tt.raw)
	}

	for _, raw := range []string{"-1", "abc", "NaN", "Inf"} {
		_, _, err := ParseBanMinutes(raw)
		require.Error(t, err, raw)
		assert.Equal(t, "Ban minutes must be 0 or higher.", err.Error(), raw)
	}
}

func TestParseAnnouncement(t *testing.T) {
	cmd, err := ParseAnnouncement("  Server restart soon  ", "")
	require.NoError(t, err)
	assert.Equal(t, api.Announce{Message: "Server restart soon", Duration: 8}, cmd)

	cmd, err = ParseAnnouncement("hi", "2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, cmd.Duration)

	_, err = ParseAnnouncement("   ", "5")
	require.Error(t, err)
	assert.Equal(t, "Enter an announcement message.", err.Error())

	for _, d := range []string{"0", "-3", "soon"} {
		_, err = ParseAnnouncement("hi", d)
		require.Error(t, err, d)
		assert.True(t, api.IsValidation(err), d)
	}
}

func TestBanAck(t *testing.T) {
	assert.Equal(t, "Permanent ban set.", banAck(0))
	assert.Equal(t, "Banned for 1.5 minutes.", banAck(1.5))
	assert.Equal(t, "Banned for 60 minutes.", banAck(60))
}
