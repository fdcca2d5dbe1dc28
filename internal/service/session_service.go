package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/config"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/events"
	"github.com/pequemaths/pequemaths-api/internal/observability"
)

var (
	// ErrMissingToken is returned when no identity token was supplied.
	ErrMissingToken = errors.New("missing id token")
	// ErrInvalidToken is returned when the identity token does not verify.
	ErrInvalidToken = errors.New("invalid id token")
)

// IssuedSession is a freshly minted session and the cookie lifetime to use.
type IssuedSession struct {
	Session        *domain.Session
	MaxAge         time.Duration
	ProfileCreated bool
}

// SessionService coordinates login and logout.
type SessionService struct {
	identity   IdentityProvider
	roles      *RoleStore
	cfg        config.SessionConfig
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// SessionDependencies encapsulates requirements for the session service.
type SessionDependencies struct {
	Identity   IdentityProvider
	Roles      *RoleStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewSessionService builds the service.
func NewSessionService(cfg config.SessionConfig, deps SessionDependencies) *SessionService {
	return &SessionService{
		identity:   deps.Identity,
		roles:      deps.Roles,
		cfg:        cfg,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// IssueSession verifies idToken, makes sure the uid has a profile record and
// mints a session cookie. Repeating the call only re-issues the cookie.
func (s *SessionService) IssueSession(ctx context.Context, idToken string, remember bool) (*IssuedSession, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Info("id token rejected", zap.Error(err))
		return nil, errors.Join(ErrInvalidToken, err)
	}

	account, err := s.identity.EnsureUser(ctx, claims)
	if err != nil {
		return nil, fmt.Errorf("load identity %s: %w", claims.UID, err)
	}

	created, err := s.roles.CreateProfile(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("ensure profile %s: %w", claims.UID, err)
	}

	maxAge := s.cfg.MaxAge(remember)
	sess, err := s.identity.CreateSessionCookie(claims, maxAge)
	if err != nil {
		return nil, fmt.Errorf("mint session: %w", err)
	}

	s.metrics.RecordSessionIssued(remember)
	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventSessionIssued, claims.UID, claims.UID,
		events.SessionIssuedPayload{SessionID: sess.ID, Remember: remember, ExpiresAt: sess.ExpiresAt}))

	return &IssuedSession{Session: sess, MaxAge: maxAge, ProfileCreated: created}, nil
}

// RevokeSession deny-lists the session carried by cookie. Cookies that do not
// verify have nothing to revoke.
func (s *SessionService) RevokeSession(ctx context.Context, cookie string) error {
	if cookie == "" {
		return nil
	}
	claims, err := s.identity.VerifySessionCookie(ctx, cookie)
	if err != nil {
		return nil
	}
	if err := s.identity.RevokeSession(ctx, claims); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventSessionRevoked, claims.Subject, claims.Subject, nil))
	return nil
}
