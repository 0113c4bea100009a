package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionCookie = "session_token"

type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HMAC-signed session tokens issued by the identity
// provider. Tokens arrive either as a bearer token or a session cookie.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret []byte) (*JWTProvider, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("session secret is empty")
	}
	return &JWTProvider{secret: secret}, nil
}

func (p *JWTProvider) GetSession(ctx context.Context, h http.Header) (*Session, error) {
	raw := tokenFromHeader(h)
	if raw == "" {
		return nil, nil
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("session subject is not a user id: %w", err)
	}

	return &Session{
		UserID: userID,
		Email:  claims.Email,
		Name:   claims.Name,
		Image:  claims.Picture,
	}, nil
}

func tokenFromHeader(h http.Header) string {
	if v := h.Get("Authorization"); v != "" {
		if tok, ok := strings.CutPrefix(v, "Bearer "); ok {
			return tok
		}
	}
	// http.Header has no cookie parsing of its own, go through a throwaway request.
	req := http.Request{Header: h}
	if c, err := req.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}
