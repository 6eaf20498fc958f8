// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package flash carries one-shot notices across a redirect in a signed cookie.
package flash

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

// CookieName is the name of the flash cookie.
const CookieName = "_flash"

// maxAge bounds how long an unread notice survives, in seconds.
const maxAge = 300

// KeyLength is the required length of the signing key in bytes.
const KeyLength = 32

// Notice kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// ErrInvalidKey is returned for keys that are not 32 bytes of hex.
var ErrInvalidKey = errors.New("flash key must be 32 bytes hex encoded")

// Message is a translated notice shown once on the next page.
type Message struct {
	Kind      string
	MessageID string
}

// Store reads and writes flash cookies.
type Store struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// New creates a Store that signs cookies with key.
// secure marks cookies as HTTPS-only.
func New(key []byte, secure bool) *Store {
	codec := securecookie.New(key, nil)
	codec.MaxAge(maxAge)
	return &Store{codec: codec, secure: secure}
}

// KeyFromHex decodes a hex signing key. An empty string yields a random key,
// so notices do not survive a restart.
func KeyFromHex(s string) ([]byte, error) {
	if s == "" {
		return securecookie.GenerateRandomKey(KeyLength), nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if len(key) != KeyLength {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// Set stores msg for the next request.
func (s *Store) Set(w http.ResponseWriter, msg Message) error {
	encoded, err := s.codec.Encode(CookieName, msg)
	if err != nil {
		return fmt.Errorf("encoding flash: %w", err)
	}
	http.SetCookie(w, s.cookie(encoded, maxAge))
	return nil
}

// Pop returns the pending notice, if any, and clears it.
// Tampered or expired cookies are dropped silently.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Message{}, false
	}
	http.SetCookie(w, s.cookie("", -1))

	var msg Message
	if err := s.codec.Decode(CookieName, c.Value, &msg); err != nil {
		return Message{}, false
	}
	return msg, true
}

func (s *Store) cookie(value string, age int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   age,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
