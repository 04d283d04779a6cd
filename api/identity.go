package api

import (
	"context"
	"net/http"
)

// IdentityFunc returns the authenticated caller of r. It reports false when
// the request carries no identity.
type IdentityFunc func(r *http.Request) (string, bool)

type callerKey struct{}

// WithCaller returns a copy of ctx carrying caller. Authentication
// middleware calls it once it has verified who sent the request.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(callerKey{}).(string)
	return caller, ok && caller != ""
}

// ContextIdentity is the default IdentityFunc. It trusts only what
// middleware stored with WithCaller.
func ContextIdentity(r *http.Request) (string, bool) {
	return CallerFromContext(r.Context())
}

// Option configures a Handler.
type Option func(*Handler)

// WithIdentity sets how the handler learns who sent an escrow or release.
func WithIdentity(fn IdentityFunc) Option {
	return func(h *Handler) {
		if fn != nil {
			h.identity = fn
		}
	}
}

// WithMiddleware adds middleware to the router built by Router, after
// request IDs and panic recovery. Authentication belongs here.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.middleware = append(h.middleware, mw...)
	}
}
