package client

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/intranet-portal/internal/observability"
)

type publicKey struct{}

// WithPublic marks requests made with ctx as not needing the session token.
// Such requests are sent without Authorization and never invalidate the
// session.
func WithPublic(ctx context.Context) context.Context {
	return context.WithValue(ctx, publicKey{}, true)
}

func isPublic(ctx context.Context) bool {
	public, _ := ctx.Value(publicKey{}).(bool)
	return public
}

// Authenticator is an http.RoundTripper that stamps the current bearer token
// on every outbound request. Only the session service arms or disarms it.
type Authenticator struct {
	base http.RoundTripper

	mu             sync.RWMutex
	token          string
	onUnauthorized func(token string)
}

// NewAuthenticator wraps base, or http.DefaultTransport when base is nil.
func NewAuthenticator(base http.RoundTripper) *Authenticator {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Authenticator{base: base}
}

// Arm makes subsequent requests carry token.
func (a *Authenticator) Arm(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

// Disarm stops attaching a token.
func (a *Authenticator) Disarm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
}

// Token returns the armed token.
func (a *Authenticator) Token() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token, a.token != ""
}

// OnUnauthorized registers fn to run when a request that carried a token is
// answered with 401. fn receives the token that was rejected.
func (a *Authenticator) OnUnauthorized(fn func(token string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onUnauthorized = fn
}

// RoundTrip implements http.RoundTripper.
func (a *Authenticator) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(observability.RequestIDHeader) == "" {
		out.Header.Set(observability.RequestIDHeader, uuid.NewString())
	}

	var sent string
	if !isPublic(req.Context()) {
		if token, ok := a.Token(); ok {
			out.Header.Set("Authorization", "Bearer "+token)
			sent = token
		}
	}

	resp, err := a.base.RoundTrip(out)
	if err != nil || sent == "" || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	a.mu.RLock()
	fn := a.onUnauthorized
	a.mu.RUnlock()
	if fn != nil {
		fn(sent)
	}
	return resp, nil
}
