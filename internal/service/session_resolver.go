package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/observability"
)

// ResolveStatus is the outcome of resolving a session cookie.
type ResolveStatus int

const (
	ResolveNoSession ResolveStatus = iota
	ResolveAuthenticated
	ResolveVerificationFailed
)

func (s ResolveStatus) String() string {
	switch s {
	case ResolveAuthenticated:
		return "authenticated"
	case ResolveVerificationFailed:
		return "verification_failed"
	default:
		return "no_session"
	}
}

// ResolveResult keeps the distinction between "no cookie" and "bad cookie"
// that Current collapses.
type ResolveResult struct {
	Status ResolveStatus
	User   *domain.SessionUser
	Claims *auth.SessionClaims
	Err    error
}

// SessionCookieVerifier verifies session cookies.
type SessionCookieVerifier interface {
	VerifySessionCookie(ctx context.Context, cookie string) (*auth.SessionClaims, error)
}

// SessionResolver turns a session cookie into the caller identity.
type SessionResolver struct {
	verifier SessionCookieVerifier
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewSessionResolver builds the resolver.
func NewSessionResolver(verifier SessionCookieVerifier, logger *zap.Logger, metrics *observability.Metrics) *SessionResolver {
	return &SessionResolver{verifier: verifier, logger: logger, metrics: metrics}
}

// Resolve verifies cookie with expiry enforcement. It has no side effects
// besides logging and metrics.
func (r *SessionResolver) Resolve(ctx context.Context, cookie string) ResolveResult {
	result := r.resolve(ctx, cookie)
	r.metrics.RecordSessionResolution(result.Status.String())
	return result
}

func (r *SessionResolver) resolve(ctx context.Context, cookie string) ResolveResult {
	if cookie == "" {
		return ResolveResult{Status: ResolveNoSession}
	}

	claims, err := r.verifier.VerifySessionCookie(ctx, cookie)
	if err != nil {
		r.logger.Warn("session verification failed", zap.Error(err))
		return ResolveResult{Status: ResolveVerificationFailed, Err: err}
	}
	return ResolveResult{Status: ResolveAuthenticated, User: claims.User(), Claims: claims}
}

// Current returns the authenticated identity, or false for any failure.
func (r *SessionResolver) Current(ctx context.Context, cookie string) (*domain.SessionUser, bool) {
	result := r.Resolve(ctx, cookie)
	if result.Status != ResolveAuthenticated {
		return nil, false
	}
	return result.User, true
}
