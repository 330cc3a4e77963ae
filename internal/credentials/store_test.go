package credentials

import (
	"net/http"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get()
	assert.False(t, ok, "new store holds no token")

	require.NoError(t, s.Set("abc"))
	token, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Set("  "))
	_, ok = s.Get()
	assert.False(t, ok, "blank tokens count as absent")

	origin := mustURL(t, "https://mod.example.com")
	s.SetCookies(origin, []*http.Cookie{{Name: "session", Value: "s1"}})
	require.Len(t, s.Cookies(origin), 1)

	require.NoError(t, s.Set("abc"))
	require.NoError(t, s.Clear())
	_, ok = s.Get()
	assert.False(t, ok)
	assert.Empty(t, s.Cookies(origin), "Clear drops cookies too")
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	base := "https://mod.example.com:8443"

	s, err := OpenFileStore(dir, base)
	require.NoError(t, err)
	assert.Equal(t, "mod.example.com_8443.json", SlotName(mustURL(t, base)))

	require.NoError(t, s.Set("abc"))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFileStore(dir, base)
	require.NoError(t, err)
	token, ok := reopened.Get()
	require.True(t, ok)
	assert.Equal(t, "abc", token)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "Clear removes the slot file")

	cleared, err := OpenFileStore(dir, base)
	require.NoError(t, err)
	_, ok = cleared.Get()
	assert.False(t, ok)
}

func TestFileStore_PersistsSessionCookies(t *testing.T) {
	dir := t.TempDir()
	origin := mustURL(t, "https://mod.example.com")

	s, err := OpenFileStore(dir, origin.String())
	require.NoError(t, err)

	s.SetCookies(origin, []*http.Cookie{{Name: "session", Value: "s1", Path: "/"}})
	s.SetCookies(mustURL(t, "https://other.example.com"), []*http.Cookie{{Name: "x", Value: "y"}})

	reopened, err := OpenFileStore(dir, origin.String())
	require.NoError(t, err)

	cookies := reopened.Cookies(origin)
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "s1", cookies[0].Value)

	_, ok := reopened.Get()
	assert.False(t, ok, "cookie sessions carry no token")
}

func TestOpenFileStore_RejectsHostlessURL(t *testing.T) {
	_, err := OpenFileStore(t.TempDir(), "mod.example.com")
	assert.Error(t, err)
}
