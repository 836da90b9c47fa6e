// Package otpcache holds short-lived, single-use verification secrets in
// process memory: signup OTP codes keyed by email and password-reset tokens
// keyed by the token itself. Entries expire on the wall clock; expired
// entries are treated as absent on every read and purged when touched.
//
// The store is intentionally ephemeral — a restart invalidates all
// outstanding codes and tokens. A multi-instance deployment would need to
// swap this for a shared expiring key-value store behind the same API.
package otpcache

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
)

const (
	// CodeTTL bounds how long a signup OTP stays valid.
	CodeTTL = 10 * time.Minute
	// TokenTTL bounds how long a password-reset token stays valid.
	TokenTTL = 60 * time.Minute

	codeRange = 900000 // codes are uniform in [100000, 999999]
	codeFloor = 100000

	tokenBytes = 32
)

type codeEntry struct {
	code      string
	expiresAt time.Time
}

type tokenEntry struct {
	email     string
	expiresAt time.Time
}

// Store is a mutex-guarded TTL map for OTP codes and reset tokens.
// The clock is injected so tests can drive expiry deterministically.
type Store struct {
	mu     sync.Mutex
	now    func() time.Time
	codes  map[string]codeEntry
	tokens map[string]tokenEntry
}

func New() *Store {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:    now,
		codes:  make(map[string]codeEntry),
		tokens: make(map[string]tokenEntry),
	}
}

// IssueCode generates a uniformly random 6-digit code for the identifier and
// stores it with a fresh expiry, overwriting any earlier code. Only the most
// recently issued code is ever valid for an identifier.
func (s *Store) IssueCode(identifier string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+codeFloor)

	s.mu.Lock()
	s.codes[identifier] = codeEntry{code: code, expiresAt: s.now().Add(CodeTTL)}
	s.mu.Unlock()
	return code, nil
}

// VerifyCode checks the candidate against the stored code for identifier.
// Returns ErrNotFound when no live entry exists, ErrExpired (and purges) when
// the entry has lapsed, ErrCodeMismatch on a wrong candidate. A successful
// match consumes the entry — each code verifies at most once.
func (s *Store) VerifyCode(identifier, candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[identifier]
	if !ok {
		return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	if s.now().After(e.expiresAt) {
		delete(s.codes, identifier)
		return fmt.Errorf("otp expired: %w", domain.ErrExpired)
	}
	if e.code != candidate {
		return fmt.Errorf("invalid otp: %w", domain.ErrCodeMismatch)
	}
	delete(s.codes, identifier)
	return nil
}

// IssueToken generates a 256-bit hex reset token bound to the identifier.
// Tokens are keyed by their own value; issuing again for the same identifier
// leaves earlier tokens live until they expire or get consumed.
func (s *Store) IssueToken(identifier string) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(b)

	s.mu.Lock()
	s.tokens[token] = tokenEntry{email: identifier, expiresAt: s.now().Add(TokenTTL)}
	s.mu.Unlock()
	return token, nil
}

// LookupToken resolves a live token to its identifier without consuming it,
// so the caller can run policy checks before committing. Expired tokens are
// purged and reported as ErrExpired.
func (s *Store) LookupToken(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok {
		return "", fmt.Errorf("reset token not found: %w", domain.ErrNotFound)
	}
	if s.now().After(e.expiresAt) {
		delete(s.tokens, token)
		return "", fmt.Errorf("reset token expired: %w", domain.ErrExpired)
	}
	return e.email, nil
}

// ConsumeToken removes a token. Removing an absent token is a no-op.
func (s *Store) ConsumeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// TokenCount reports how many reset tokens are currently live, purging any
// that have expired along the way.
func (s *Store) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.tokens {
		if now.After(e.expiresAt) {
			delete(s.tokens, k)
		}
	}
	return len(s.tokens)
}
