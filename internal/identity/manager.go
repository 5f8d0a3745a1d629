package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"proedualt/internal/config"
	"proedualt/internal/errors"
	"proedualt/internal/types"
)

// minRefreshInterval is how long a newly issued session is used as is,
// even when its expiry says it needs a refresh
const minRefreshInterval = 30 * time.Second

// authBackend is the slice of the identity provider the manager uses
type authBackend interface {
	SignInWithEmail(email, password string) (*Session, error)
	SignInWithPhone(phone, password string) (*Session, error)
	Refresh(refreshToken string) (*Session, error)
	Logout(accessToken string) error
	Profile(accessToken, userID string) (*types.Profile, error)
}

// Manager is the Provider backed by the identity service and the session file
type Manager struct {
	auth    authBackend
	store   *FileStore
	hub     *Hub
	watcher *SessionWatcher
	logger  *errors.Logger

	refreshMargin time.Duration
	now           func() time.Time

	mu          sync.Mutex
	current     *Session
	loaded      bool
	refreshedAt time.Time
}

// NewManager creates a session manager. When cfg.Watch is set, Start
// begins watching the session file for changes made by other processes.
func NewManager(auth authBackend, cfg config.SessionConfig, logger *errors.Logger) *Manager {
	m := &Manager{
		auth:          auth,
		store:         NewFileStore(cfg.File),
		hub:           NewHub(logger),
		logger:        logger,
		refreshMargin: cfg.RefreshMargin,
		now:           time.Now,
	}
	if cfg.Watch {
		m.watcher = NewSessionWatcher(cfg.File, cfg.DebounceDelay, m.reloadFromStore, logger)
	}
	return m
}

// Start loads the persisted session and starts the file watcher
func (m *Manager) Start() error {
	if err := m.load(); err != nil {
		return err
	}
	if m.watcher != nil {
		if err := m.watcher.Start(); err != nil {
			m.logger.Warn("Session file watching disabled", "error", err)
		}
	}
	return nil
}

// Close stops the file watcher
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}

func (m *Manager) load() error {
	s, err := m.store.Load()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.current = s
	m.loaded = true
	m.mu.Unlock()
	return nil
}

// CurrentSession returns the current session, refreshing the access token
// when it is about to expire. A failed refresh signs the user out.
func (m *Manager) CurrentSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if !m.loaded {
		m.mu.Unlock()
		if err := m.load(); err != nil {
			return nil, err
		}
		m.mu.Lock()
	}
	s := m.current
	refreshedAt := m.refreshedAt
	m.mu.Unlock()

	if s == nil {
		return nil, nil
	}
	now := m.now()
	if !s.NeedsRefresh(now, m.refreshMargin) || now.Sub(refreshedAt) < minRefreshInterval {
		return s.Clone(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	refreshed, err := m.auth.Refresh(s.RefreshToken)
	if err != nil {
		m.logger.LogError(err, "Session refresh failed, signing out", "user_id", s.UserID())
		m.replace(nil, SignedOut)
		return nil, errors.NewAuthError(errors.ErrCodeNotSignedIn, "session expired, please sign in again", err)
	}
	m.replace(refreshed, TokenRefreshed)
	return refreshed.Clone(), nil
}

// AccessToken returns the current access token, or "" when signed out
func (m *Manager) AccessToken(ctx context.Context) string {
	s, err := m.CurrentSession(ctx)
	if err != nil || s == nil {
		return ""
	}
	return s.AccessToken
}

// SignIn signs in with a password. Identifiers containing "@" are treated
// as email addresses, anything else as a phone number.
func (m *Manager) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "email or phone and password are required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		s   *Session
		err error
	)
	if strings.Contains(identifier, "@") {
		s, err = m.auth.SignInWithEmail(identifier, password)
	} else {
		s, err = m.auth.SignInWithPhone(identifier, password)
	}
	if err != nil {
		return nil, errors.NewAuthError(errors.ErrCodeSignInFailed, "sign-in failed", err)
	}

	if err := m.replace(s, SignedIn); err != nil {
		return nil, err
	}
	m.logger.Info("Signed in", "user_id", s.UserID())
	return s.Clone(), nil
}

// SignOut ends the session locally and, best effort, at the provider
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()

	if s != nil {
		if err := m.auth.Logout(s.AccessToken); err != nil {
			m.logger.Warn("Provider logout failed", "error", err)
		}
	}
	return m.replace(nil, SignedOut)
}

// Subscribe registers h for session changes
func (m *Manager) Subscribe(h Handler) func() {
	return m.hub.Subscribe(h)
}

// Profile reads the profile row for userID with the current token
func (m *Manager) Profile(ctx context.Context, userID string) (*types.Profile, error) {
	if _, err := ParseUserID(userID); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid user id", err)
	}
	s, err := m.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.ErrNoSession
	}
	p, err := m.auth.Profile(s.AccessToken, userID)
	if err != nil {
		return nil, errors.NewBackendError(errors.ErrCodeProfileNotFound, "profile not found", err)
	}
	return p, nil
}

// replace swaps the current session, persists it and publishes kind
func (m *Manager) replace(s *Session, kind EventKind) error {
	m.mu.Lock()
	m.current = s
	m.loaded = true
	m.refreshedAt = issuedAt(s, m.now())
	m.mu.Unlock()

	err := m.store.Save(s)
	if m.watcher != nil {
		m.watcher.Touch()
	}
	if err != nil {
		m.logger.LogError(err, "Failed to persist session")
	}

	m.hub.Publish(Event{Kind: kind, Session: s.Clone()})
	return err
}

// reloadFromStore reacts to the session file changing underneath us
func (m *Manager) reloadFromStore() {
	s, err := m.store.Load()
	if err != nil {
		m.logger.LogError(err, "Failed to reload session file")
		return
	}

	m.mu.Lock()
	prev := m.current
	m.current = s
	kind, changed := classifyChange(prev, s)
	if changed {
		m.refreshedAt = issuedAt(s, m.now())
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	m.logger.Debug("Session changed externally", "kind", kind.String())
	m.hub.Publish(Event{Kind: kind, Session: s.Clone()})
}

// issuedAt is now for a new session and zero once signed out
func issuedAt(s *Session, now time.Time) time.Time {
	if s == nil {
		return time.Time{}
	}
	return now
}

// classifyChange maps a session transition to the event it represents
func classifyChange(prev, next *Session) (EventKind, bool) {
	switch {
	case prev == nil && next == nil:
		return 0, false
	case next == nil:
		return SignedOut, true
	case prev == nil || prev.User.ID != next.User.ID:
		return SignedIn, true
	case prev.AccessToken != next.AccessToken:
		return TokenRefreshed, true
	default:
		return 0, false
	}
}
