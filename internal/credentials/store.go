// Package credentials holds the operator credential for a moderation API
// origin: a bearer token in bearer-mode deployments, or the session cookie in
// cookie-mode deployments. A Store is the only owner of that state; the API
// client reads it for every request and the session controller clears it on
// logout or when the server rejects it.
package credentials

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// Store is the credential holder for a single API origin.
//
// Set and Clear are visible to the next Get immediately. Clear destroys the
// token and every stored cookie.
type Store interface {
	http.CookieJar

	Get() (string, bool)
	Set(token string) error
	Clear() error
}

func newJar() *cookiejar.Jar {
	// cookiejar.New only fails on invalid options
	jar, _ := cookiejar.New(nil)
	return jar
}

func normalizeToken(token string) (string, bool) {
	token = strings.TrimSpace(token)
	return token, token != ""
}

type storeCtxKeyType string

const storeCtxKey storeCtxKeyType = "credentialStore"

func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, storeCtxKey, store)
}

func FromContext(ctx context.Context) Store {
	store, ok := ctx.Value(storeCtxKey).(Store)
	if !ok {
		panic("credential store not present in context")
	}
	return store
}
