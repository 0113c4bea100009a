package auth

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
)

// Session is the identity resolved from an inbound request. The identity
// provider owns the user records; we consume them read-only.
type Session struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Image  string
}

// SessionProvider resolves the acting identity from request headers.
// (nil, nil) means no session: the caller decides whether that is an error.
type SessionProvider interface {
	GetSession(ctx context.Context, h http.Header) (*Session, error)
}

// Fingerprint returns the rate-limit actor key for a request: the user id
// when authenticated, otherwise the network origin. It is never used for
// ownership checks.
func Fingerprint(s *Session, remoteAddr string) string {
	if s != nil {
		return s.UserID.String()
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return "ip:" + host
}
