// Package session provides persistent login state for the CLI.
//
// A session stores the access token obtained from `seisview auth login`
// together with the authority that issued it, so later invocations can
// authenticate without prompting. Sessions expire and are removed lazily
// on the next read.
//
// # Usage
//
// Create a session store:
//
//	store, err := session.NewFileStore("")  // Uses ~/.config/seisview/sessions/
//
// Manage sessions:
//
//	sess, err := session.New(accessToken, subject, authority, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, sessionID)
//	if sess == nil {
//	    // Not logged in (or the session expired)
//	}
//
// Most callers want [CLIStore], which pins a single well-known session ID.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Session stores the result of a login.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	Subject     string    `json:"subject,omitempty"`
	Authority   string    `json:"authority,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns a storage-compatible user identifier, or empty when the
// token carried no subject. Used to namespace cache keys per user.
func (s *Session) UserID() string {
	if s == nil || s.Subject == "" {
		return ""
	}
	return "user:" + s.Subject
}

// Store persists sessions between CLI invocations.
type Store interface {
	// Get returns the session with the given ID, or nil, nil when it does
	// not exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session under its ID.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Removing a missing session is not an
	// error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions and leftover temp files.
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID returns a random URL-safe session ID with 256 bits of
// entropy.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for the given token.
func New(accessToken, subject, authority string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:          id,
		AccessToken: accessToken,
		Subject:     subject,
		Authority:   authority,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}, nil
}
