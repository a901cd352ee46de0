// Package session holds per-browser-session state: the authenticated
// identity, if any, and the shopping cart. State lives server-side keyed
// by an opaque token delivered in a cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/trishadairy/storefront/internal/cart"
)

const CookieName = "dairy_session"

type State struct {
	UserID   uint      `json:"user_id"`
	UserName string    `json:"user_name"`
	Cart     cart.Cart `json:"cart"`
}

func (s *State) LoggedIn() bool { return s.UserID != 0 }

// Store is the per-session state contract. Get never fails on an unknown
// or expired token: an absent session is a fresh empty one. Mutate applies
// fn to the current state and writes the result back; within one request
// there is a single writer, cross-request interleaving is last-write-wins.
type Store interface {
	Get(ctx context.Context, token string) (*State, error)
	Mutate(ctx context.Context, token string, fn func(*State) error) error
	Delete(ctx context.Context, token string) error
}

// NewToken returns an opaque session token. 32 random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func NewCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
