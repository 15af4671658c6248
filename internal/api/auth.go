package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"roombook/internal/config"

	"golang.org/x/time/rate"
)

var (
	errUnauthenticated  = errors.New("invalid or missing token")
	errPermissionDenied = errors.New("permission denied")
)

// Authenticator resolves bearer tokens to verified user ids. It is a pure
// lookup over config-provided credentials, injected into the handler chain;
// no shared mutable state.
type Authenticator struct {
	tokens map[string]config.APIToken
}

func NewAuthenticator(cfg config.APIAuthConfig) *Authenticator {
	m := make(map[string]config.APIToken, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		m[t.Token] = t
	}
	return &Authenticator{tokens: m}
}

// Authenticate returns the user id bound to the token.
func (a *Authenticator) Authenticate(token string) (int64, error) {
	client, ok := a.tokens[token]
	if !ok || subtle.ConstantTimeCompare([]byte(client.Token), []byte(token)) != 1 {
		return 0, errUnauthenticated
	}
	return client.UserID, nil
}

// Authorize checks the permission string for the token, when the token
// carries an explicit permission list.
func (a *Authenticator) Authorize(token, required string) error {
	client, ok := a.tokens[token]
	if !ok {
		return errUnauthenticated
	}
	if required == "" || len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// rateLimiter keeps a token bucket per client token.
type rateLimiter struct {
	cfg      config.APIRateLimitConfig
	limiters sync.Map // map[string]*rate.Limiter
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg}
}

func (l *rateLimiter) allow(key string) error {
	if l.cfg.RPS <= 0 {
		return nil
	}
	if !l.getLimiter(key).Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
