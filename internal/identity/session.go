// Package identity owns the signed-in session: it signs users in and out
// through the identity provider, persists the session between runs, and
// notifies subscribers whenever the session changes.
package identity

import (
	"context"
	"fmt"
	"time"

	"proedualt/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is the identity attached to a session
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

// Session is a provider-issued session, mirrored read-only by consumers
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// UserID returns the user identifier in its canonical text form
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID.String()
}

// Contact returns the user's email, falling back to phone
func (s *Session) Contact() string {
	if s == nil {
		return ""
	}
	if s.User.Email != "" {
		return s.User.Email
	}
	return s.User.Phone
}

// Clone returns a copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Expiry returns when the access token stops being valid. ExpiresAt wins;
// otherwise the token's exp claim is read without verifying the signature.
func (s *Session) Expiry() (time.Time, error) {
	if !s.ExpiresAt.IsZero() {
		return s.ExpiresAt, nil
	}
	return TokenExpiry(s.AccessToken)
}

// NeedsRefresh reports whether the token expires within margin of now.
// A token whose expiry cannot be determined is treated as expiring.
func (s *Session) NeedsRefresh(now time.Time, margin time.Duration) bool {
	exp, err := s.Expiry()
	if err != nil {
		return true
	}
	return !now.Add(margin).Before(exp)
}

// TokenExpiry reads the exp claim of a JWT without verifying it
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}

// ParseUserID validates a user identifier
func ParseUserID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// EventKind classifies a session change
type EventKind int

const (
	InitialSession EventKind = iota
	SignedIn
	SignedOut
	TokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case InitialSession:
		return "INITIAL_SESSION"
	case SignedIn:
		return "SIGNED_IN"
	case SignedOut:
		return "SIGNED_OUT"
	case TokenRefreshed:
		return "TOKEN_REFRESHED"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one session change. Session is nil when signed out.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Handler receives session change events
type Handler func(Event)

// Provider is the identity surface the dashboard consumes
type Provider interface {
	// CurrentSession returns the current session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)
	// Subscribe registers h for session changes and returns its cancel func.
	Subscribe(h Handler) (unsubscribe func())
	// SignOut ends the session.
	SignOut(ctx context.Context) error
}

// ProfileSource reads persisted profile rows
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (*types.Profile, error)
}
