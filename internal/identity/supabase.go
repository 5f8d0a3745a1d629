package identity

import (
	"fmt"
	"sync"
	"time"

	"proedualt/internal/config"
	"proedualt/internal/errors"
	"proedualt/internal/types"

	"github.com/supabase-community/gotrue-go"
	gotruetypes "github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// supabaseAuth adapts the Supabase client. The client swaps its auth
// headers in place on every token change, so calls are serialized.
type supabaseAuth struct {
	mu     sync.Mutex
	client *supabase.Client
	auth   gotrue.Client
	table  string
}

// NewSupabaseManager builds a Manager backed by Supabase
func NewSupabaseManager(cfg *config.Config, logger *errors.Logger) (*Manager, error) {
	if !cfg.HasIdentity() {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"supabase url and anon key are required (PROEDUALT_SUPABASE_URL, PROEDUALT_SUPABASE_ANONKEY)", nil)
	}

	client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.AnonKey, nil)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create supabase client", err)
	}

	table := cfg.Supabase.ProfilesTable
	if table == "" {
		table = "profiles"
	}

	auth := &supabaseAuth{client: client, auth: client.Auth, table: table}
	return NewManager(auth, cfg.Session, logger), nil
}

func (sa *supabaseAuth) SignInWithEmail(email, password string) (*Session, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	resp, err := sa.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, err
	}
	return fromGotrue(resp.Session), nil
}

func (sa *supabaseAuth) SignInWithPhone(phone, password string) (*Session, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	resp, err := sa.auth.SignInWithPhonePassword(phone, password)
	if err != nil {
		return nil, err
	}
	return fromGotrue(resp.Session), nil
}

func (sa *supabaseAuth) Refresh(refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token")
	}
	sa.mu.Lock()
	defer sa.mu.Unlock()

	resp, err := sa.auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return fromGotrue(resp.Session), nil
}

func (sa *supabaseAuth) Logout(accessToken string) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.auth.WithToken(accessToken).Logout()
}

func (sa *supabaseAuth) Profile(accessToken, userID string) (*types.Profile, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.client.UpdateAuthSession(gotruetypes.Session{AccessToken: accessToken})

	var p types.Profile
	_, err := sa.client.From(sa.table).
		Select("*", "", false).
		Eq("id", userID).
		Single().
		ExecuteTo(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func fromGotrue(s gotruetypes.Session) *Session {
	out := &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		User: User{
			ID:    s.User.ID,
			Email: s.User.Email,
			Phone: s.User.Phone,
		},
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return out
}
