package inbound

import (
	"context"
	"io"
	"time"

	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/domain/user"
)

// AuthService signs users in through the hosted provider and manages sessions
type AuthService interface {
	SignUp(ctx context.Context, creds user.Credentials) (*Session, error)
	SignIn(ctx context.Context, creds user.Credentials) (*Session, error)
	SignOut(ctx context.Context, claims *SessionClaims) error
	Verify(ctx context.Context, token string) (*SessionClaims, error)
}

// Session is returned after a successful sign-in or sign-up
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      user.Identity `json:"user"`
}

// SessionClaims is what a verified session token carries
type SessionClaims struct {
	SessionID string
	User      user.Identity
	ExpiresAt time.Time
}

// PreferencesService reads and writes user preferences
type PreferencesService interface {
	Get(ctx context.Context, uid string) (*user.Preferences, error)
	Update(ctx context.Context, uid string, prefs user.Preferences) (*user.Preferences, error)
}

// CaptureService stores and lists kitchen camera images
type CaptureService interface {
	Upload(ctx context.Context, filename string, size int64, body io.ReadSeeker) (*capture.Capture, error)
	List(ctx context.Context, limit int) ([]*capture.Capture, error)
	Delete(ctx context.Context, id string) error
}
