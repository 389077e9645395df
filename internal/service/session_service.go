package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/intranet-portal/internal/api/dto"
	"github.com/spec-kit/intranet-portal/internal/auth"
	"github.com/spec-kit/intranet-portal/internal/domain"
	"github.com/spec-kit/intranet-portal/internal/events"
	"github.com/spec-kit/intranet-portal/internal/observability"
	"github.com/spec-kit/intranet-portal/internal/repository"
	apperrors "github.com/spec-kit/intranet-portal/pkg/util"
)

// ErrNotAuthenticated is returned by operations that need a live session.
var ErrNotAuthenticated = errors.New("session is not authenticated")

// LoginClient is the part of the intranet API the session needs.
type LoginClient interface {
	Login(ctx context.Context, email, senha string) (*dto.LoginResponse, error)
}

// TokenCarrier attaches the session token to outbound requests.
type TokenCarrier interface {
	Arm(token string)
	Disarm()
}

// SessionDependencies encapsulates collaborators of the session service.
type SessionDependencies struct {
	Store        repository.CredentialRepository
	Client       LoginClient
	Carrier      TokenCarrier
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	LoginTimeout time.Duration
	Now          func() time.Time
}

// SessionService owns the session state. It is created in the initializing
// state; Initialize must run before the state settles.
//
// Store writes happen under the same lock as state changes so the persisted
// credential always matches the in-memory one.
type SessionService struct {
	store        repository.CredentialRepository
	client       LoginClient
	carrier      TokenCarrier
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	loginTimeout time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	state domain.SessionState
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		store:        deps.Store,
		client:       deps.Client,
		carrier:      deps.Carrier,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       logger.Named("session"),
		loginTimeout: deps.LoginTimeout,
		now:          now,
		state:        domain.SessionState{Status: domain.SessionInitializing},
	}
}

// Initialize restores the persisted credential, if any. A missing, corrupt
// or expired credential leaves the session unauthenticated without error.
// Running it again with the same persisted state gives the same result.
func (s *SessionService) Initialize(ctx context.Context) domain.SessionStatus {
	s.mu.Lock()
	s.state = domain.SessionState{Status: domain.SessionInitializing}

	cred, ok := s.store.Load(ctx)
	if ok && auth.TokenExpired(cred.Token, s.now()) {
		s.logger.Info("persisted token expired; discarding session")
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear expired credential", zap.Error(err))
		}
		ok = false
	}

	if ok {
		s.state = domain.SessionState{Status: domain.SessionAuthenticated, Credential: cred}
		s.carrier.Arm(cred.Token)
	} else {
		s.state = domain.SessionState{Status: domain.SessionUnauthenticated}
		s.carrier.Disarm()
	}
	status := s.state.Status
	s.mu.Unlock()

	s.logger.Info("session initialized", zap.Stringer("status", status))
	if ok {
		s.publish(ctx, events.EventSessionRestored, cred.User, nil)
	}
	return status
}

// Login authenticates against the intranet API. On failure the session is
// left as it was and the returned error is an AUTHENTICATION_FAILED or
// SERVICE_UNREACHABLE DomainError. The attempt is bounded by the configured
// login timeout.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	callCtx := ctx
	if s.loginTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.loginTimeout)
		defer cancel()
	}

	resp, err := s.client.Login(callCtx, email, password)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeAuthenticationFailed) && !apperrors.HasCode(err, apperrors.CodeServiceUnreachable) {
			err = apperrors.NewServiceUnreachable(err)
		}
		code := apperrors.ToDomainError(err).Code
		s.metrics.RecordLogin(code)
		s.logger.Info("login failed", zap.String("email", email), zap.String("code", code), zap.Error(err))
		s.publish(ctx, events.EventLoginFailed, domain.UserRecord{}, events.LoginFailedPayload{Email: email, Code: code})
		return err
	}

	cred := domain.Credential{Token: resp.Token, User: *resp.User}

	s.mu.Lock()
	if err := s.store.Save(ctx, cred); err != nil {
		s.logger.Warn("failed to persist credential; session will not survive a restart", zap.Error(err))
	}
	s.carrier.Arm(cred.Token)
	s.state = domain.SessionState{Status: domain.SessionAuthenticated, Credential: &cred}
	s.mu.Unlock()

	s.metrics.RecordLogin("success")
	s.logger.Info("login succeeded", zap.Int64("user_id", cred.User.ID), zap.String("role", string(cred.User.Role)))
	s.publish(ctx, events.EventSessionStarted, cred.User, nil)
	return nil
}

// Logout ends the session. It never fails and is a no-op when there is no
// session.
func (s *SessionService) Logout(ctx context.Context) {
	prev, ended := s.end(ctx, nil)
	if ended {
		s.logger.Info("logged out", zap.Int64("user_id", prev.ID))
		s.publish(ctx, events.EventSessionEnded, prev, events.SessionEndedPayload{Reason: "logout"})
	}
}

// Invalidate ends the session when token is still the current one. It is
// the reaction to the API rejecting the token with 401.
func (s *SessionService) Invalidate(ctx context.Context, token string) bool {
	prev, ended := s.end(ctx, &token)
	if ended {
		s.logger.Warn("session invalidated by the API", zap.Int64("user_id", prev.ID))
		s.publish(ctx, events.EventSessionInvalidated, prev, events.SessionEndedPayload{Reason: "unauthorized"})
	}
	return ended
}

// HandleUnauthorized adapts Invalidate to the Authenticator hook.
func (s *SessionService) HandleUnauthorized(token string) {
	s.Invalidate(context.Background(), token)
}

// end clears the session. With onlyToken set, it only acts while that token
// is the current one.
func (s *SessionService) end(ctx context.Context, onlyToken *string) (domain.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasAuthenticated := s.state.Status == domain.SessionAuthenticated
	if onlyToken != nil && (!wasAuthenticated || s.state.Credential.Token != *onlyToken) {
		return domain.UserRecord{}, false
	}

	var prev domain.UserRecord
	if wasAuthenticated {
		prev = s.state.Credential.User
	}

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted credential", zap.Error(err))
	}
	s.carrier.Disarm()
	s.state = domain.SessionState{Status: domain.SessionUnauthenticated}
	return prev, wasAuthenticated
}

// UpdateDisplayName merges nome into the session user, in memory and in the
// store. Token, role and status are untouched.
func (s *SessionService) UpdateDisplayName(ctx context.Context, nome string) error {
	s.mu.Lock()
	if s.state.Status != domain.SessionAuthenticated {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	oldNome := s.state.Credential.User.Nome
	updated := domain.Credential{
		Token: s.state.Credential.Token,
		User:  s.state.Credential.User.WithNome(nome),
	}
	if err := s.store.Save(ctx, updated); err != nil {
		s.logger.Warn("failed to persist display name", zap.Error(err))
	}
	s.state.Credential = &updated
	s.mu.Unlock()

	s.publish(ctx, events.EventDisplayNameChanged, updated.User, events.DisplayNameChangedPayload{OldNome: oldNome, NewNome: nome})
	return nil
}

// State returns a copy of the current session state.
func (s *SessionService) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.SessionState{Status: s.state.Status}
	if s.state.Credential != nil {
		cred := *s.state.Credential
		out.Credential = &cred
	}
	return out
}

// Status returns the current lifecycle status.
func (s *SessionService) Status() domain.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Status
}

// IsAuthenticated reports whether a session is live.
func (s *SessionService) IsAuthenticated() bool {
	return s.Status() == domain.SessionAuthenticated
}

// Credential returns a copy of the session credential, nil unless
// authenticated.
func (s *SessionService) Credential() *domain.Credential {
	return s.State().Credential
}

// User returns the session user. ok is false unless authenticated.
func (s *SessionService) User() (domain.UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Status != domain.SessionAuthenticated {
		return domain.UserRecord{}, false
	}
	return s.state.Credential.User, true
}

// Token returns the session token. ok is false unless authenticated.
func (s *SessionService) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Status != domain.SessionAuthenticated {
		return "", false
	}
	return s.state.Credential.Token, true
}

// Capabilities returns what the session role may see.
func (s *SessionService) Capabilities() auth.Capabilities {
	return auth.CapabilitiesFor(s.State().Role())
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, user domain.UserRecord, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Role:      user.Role,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
