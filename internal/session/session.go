// Package session keeps the administrator's login between CLI runs: the
// username that gates navigation, the bearer token and its expiry.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSession = errors.New("not logged in")
	ErrExpired   = errors.New("session expired, log in again")
)

type Session struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}

type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// ExpiryFromToken reads the exp claim without verifying the signature; the
// backend verifies on every call. Tokens without exp get now+fallback.
func ExpiryFromToken(token string, now time.Time, fallback time.Duration) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return now.Add(fallback)
}

// Current loads the stored session and checks it has not expired. An
// expired session is cleared.
func Current(ctx context.Context, st Store, now time.Time) (Session, error) {
	s, err := st.Load(ctx)
	if err != nil {
		return Session{}, err
	}
	if !s.Valid(now) {
		_ = st.Clear(ctx)
		return Session{}, ErrExpired
	}
	return s, nil
}
