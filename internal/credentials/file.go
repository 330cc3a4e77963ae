package credentials

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/modpanel/cli/internal/logger"
	"github.com/spf13/viper"
)

// FileStore persists the credential for one API origin in
// <dir>/<host>.json so that it survives restarts but not a logout.
type FileStore struct {
	// All operations must happen to the slot file,
	// so they must operate on a separate Viper instance.
	v    *viper.Viper
	dir  string
	path string
	base *url.URL

	mu    sync.Mutex
	token string
	jar   *cookiejar.Jar
}

var _ Store = (*FileStore)(nil)

type slot struct {
	Token   string       `mapstructure:"token" json:"token"`
	Cookies []slotCookie `mapstructure:"cookies" json:"cookies"`
}

type slotCookie struct {
	Name  string `mapstructure:"name" json:"name"`
	Value string `mapstructure:"value" json:"value"`
}

// OpenFileStore opens (or lazily creates) the slot for baseURL's origin inside dir.
func OpenFileStore(dir, baseURL string) (*FileStore, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	path := filepath.Join(dir, SlotName(base))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	s := &FileStore{
		v:    v,
		dir:  dir,
		path: path,
		base: base,
		jar:  newJar(),
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var saved slot
	if err := v.Unmarshal(&saved); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}

	s.token, _ = normalizeToken(saved.Token)
	for _, c := range saved.Cookies {
		s.jar.SetCookies(base, []*http.Cookie{{Name: c.Name, Value: c.Value}})
	}

	return s, nil
}

// SlotName returns the file name used for an origin, e.g. "mod.example.com_8443.json".
func SlotName(u *url.URL) string {
	return strings.ReplaceAll(u.Host, ":", "_") + ".json"
}

// Path returns the slot file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, _ = normalizeToken(token)
	return s.save()
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.jar = newJar()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

func (s *FileStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar.SetCookies(u, cookies)

	if u.Host != s.base.Host {
		return
	}
	if err := s.save(); err != nil {
		logger.Warning("Failed to persist session cookie: %v", err)
	}
}

func (s *FileStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// save must be called with s.mu held.
func (s *FileStore) save() error {
	cookies := []map[string]any{}
	for _, c := range s.jar.Cookies(s.base) {
		cookies = append(cookies, map[string]any{"name": c.Name, "value": c.Value})
	}

	if s.token == "" && len(cookies) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove credential file: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	s.v.Set("token", s.token)
	s.v.Set("cookies", cookies)

	if err := s.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	return os.Chmod(s.path, 0o600)
}
