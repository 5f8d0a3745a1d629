package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"proedualt/internal/config"
	"proedualt/internal/errors"
	"proedualt/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu         sync.Mutex
	user       User
	refreshErr error
	refreshes  int
	profiles   int
	logouts    int
	lastMethod string
	profile    *types.Profile
}

func (f *fakeAuth) session(token string) *Session {
	return &Session{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         f.user,
	}
}

func (f *fakeAuth) SignInWithEmail(email, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMethod = "email"
	if password != "secret" {
		return nil, fmt.Errorf("invalid login credentials")
	}
	return f.session("email-token"), nil
}

func (f *fakeAuth) SignInWithPhone(phone, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMethod = "phone"
	return f.session("phone-token"), nil
}

func (f *fakeAuth) Refresh(refreshToken string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.session("refreshed-token"), nil
}

func (f *fakeAuth) Logout(accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

func (f *fakeAuth) Profile(accessToken, userID string) (*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles++
	if f.profile == nil {
		return nil, fmt.Errorf("no rows")
	}
	return f.profile, nil
}

func (f *fakeAuth) counts() (refreshes, profiles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes, f.profiles
}

func newTestManager(t *testing.T, auth *fakeAuth, watch bool) *Manager {
	t.Helper()
	m := NewManager(auth, config.SessionConfig{
		File:          filepath.Join(t.TempDir(), "session.json"),
		Watch:         watch,
		RefreshMargin: time.Minute,
		DebounceDelay: 20 * time.Millisecond,
	}, errors.NewNop())
	require.NoError(t, m.Start())
	t.Cleanup(func() { m.Close() })
	return m
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for session event")
		return Event{}
	}
}

func TestSignInPublishesAndPersists(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New(), Email: "dev@example.com"}}
	m := newTestManager(t, auth, false)

	events := make(chan Event, 4)
	defer m.Subscribe(func(e Event) { events <- e })()

	s, err := m.SignIn(context.Background(), "dev@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "email", auth.lastMethod)
	assert.Equal(t, "email-token", s.AccessToken)

	e := waitEvent(t, events)
	assert.Equal(t, SignedIn, e.Kind)
	assert.Equal(t, auth.user.ID, e.Session.User.ID)

	stored, err := m.store.Load()
	require.NoError(t, err)
	assert.Equal(t, "email-token", stored.AccessToken)
}

func TestSignInChoosesPhone(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New(), Phone: "+15550100"}}
	m := newTestManager(t, auth, false)

	_, err := m.SignIn(context.Background(), "+15550100", "pw")
	require.NoError(t, err)
	assert.Equal(t, "phone", auth.lastMethod)
}

func TestSignInFailure(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New()}}
	m := newTestManager(t, auth, false)

	_, err := m.SignIn(context.Background(), "dev@example.com", "wrong")
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))

	_, err = m.SignIn(context.Background(), "", "")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	s, err := m.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCurrentSessionRefreshesExpiringToken(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New()}}
	m := newTestManager(t, auth, false)

	require.NoError(t, m.store.Save(&Session{
		AccessToken:  "old",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(10 * time.Second),
		User:         auth.user,
	}))
	require.NoError(t, m.load())

	events := make(chan Event, 4)
	defer m.Subscribe(func(e Event) { events <- e })()

	s, err := m.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", s.AccessToken)
	assert.Equal(t, 1, auth.refreshes)
	assert.Equal(t, TokenRefreshed, waitEvent(t, events).Kind)

	s, err = m.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", s.AccessToken)
	assert.Equal(t, 1, auth.refreshes, "fresh token is not refreshed again")
}

func TestFailedRefreshSignsOut(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New()}, refreshErr: fmt.Errorf("refresh token revoked")}
	m := newTestManager(t, auth, false)

	require.NoError(t, m.store.Save(&Session{AccessToken: "old", RefreshToken: "r", ExpiresAt: time.Now(), User: auth.user}))
	require.NoError(t, m.load())

	events := make(chan Event, 4)
	defer m.Subscribe(func(e Event) { events <- e })()

	s, err := m.CurrentSession(context.Background())
	assert.Nil(t, s)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuth))
	assert.Equal(t, SignedOut, waitEvent(t, events).Kind)

	_, statErr := os.Stat(m.store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestSignOut(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New(), Email: "dev@example.com"}}
	m := newTestManager(t, auth, false)

	_, err := m.SignIn(context.Background(), "dev@example.com", "secret")
	require.NoError(t, err)

	events := make(chan Event, 4)
	defer m.Subscribe(func(e Event) { events <- e })()

	require.NoError(t, m.SignOut(context.Background()))
	assert.Equal(t, 1, auth.logouts)

	e := waitEvent(t, events)
	assert.Equal(t, SignedOut, e.Kind)
	assert.Nil(t, e.Session)
}

func TestProfile(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New(), Email: "dev@example.com"}, profile: &types.Profile{GithubUsername: "octo"}}
	m := newTestManager(t, auth, false)

	_, err := m.Profile(context.Background(), "not-a-uuid")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = m.Profile(context.Background(), auth.user.ID.String())
	assert.ErrorIs(t, err, errors.ErrNoSession)

	_, err = m.SignIn(context.Background(), "dev@example.com", "secret")
	require.NoError(t, err)

	p, err := m.Profile(context.Background(), auth.user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "octo", p.GithubUsername)
}

func TestExternalSessionChangeIsPublished(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New(), Email: "dev@example.com"}}
	m := newTestManager(t, auth, true)

	events := make(chan Event, 4)
	defer m.Subscribe(func(e Event) { events <- e })()

	other := NewFileStore(m.store.Path())
	require.NoError(t, other.Save(auth.session("from-other-process")))

	e := waitEvent(t, events)
	assert.Equal(t, SignedIn, e.Kind)
	assert.Equal(t, "from-other-process", e.Session.AccessToken)

	require.NoError(t, other.Clear())
	assert.Equal(t, SignedOut, waitEvent(t, events).Kind)
}

func TestNewSessionIsNotRefreshedAgainRightAway(t *testing.T) {
	auth := &fakeAuth{user: User{ID: uuid.New(), Email: "dev@example.com"}, profile: &types.Profile{}}
	m := NewManager(auth, config.SessionConfig{
		File:          filepath.Join(t.TempDir(), "session.json"),
		RefreshMargin: 2 * time.Hour, // longer than the 1h token lifetime
	}, errors.NewNop())
	require.NoError(t, m.Start())
	t.Cleanup(func() { m.Close() })

	var offset atomic.Int64
	start := time.Now()
	m.now = func() time.Time { return start.Add(time.Duration(offset.Load())) }

	// every event reloads the profile, the way the dashboard does
	userID := auth.user.ID.String()
	defer m.Subscribe(func(e Event) {
		if e.Session != nil {
			_, _ = m.Profile(context.Background(), userID)
		}
	})()

	_, err := m.SignIn(context.Background(), "dev@example.com", "secret")
	require.NoError(t, err)

	require.Eventually(t, func() bool { _, p := auth.counts(); return p >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	refreshes, _ := auth.counts()
	assert.Equal(t, 0, refreshes, "Expected no refresh right after sign-in")

	offset.Store(int64(minRefreshInterval + time.Second))
	s, err := m.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", s.AccessToken)

	require.Eventually(t, func() bool { _, p := auth.counts(); return p >= 2 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	refreshes, profiles := auth.counts()
	if refreshes != 1 {
		t.Errorf("Expected 1 refresh, got %d", refreshes)
	}
	if profiles != 2 {
		t.Errorf("Expected 2 profile loads, got %d", profiles)
	}
}
