package otpcache

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for driving expiry.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time         { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(clk.Now), clk
}

func TestIssueCode_SixDigits(t *testing.T) {
	s, _ := newTestStore()
	for i := 0; i < 50; i++ {
		code, err := s.IssueCode("a@b.com")
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{5}$`), code)
	}
}

func TestVerifyCode_HappyPath_ConsumesEntry(t *testing.T) {
	s, _ := newTestStore()
	code, err := s.IssueCode("a@b.com")
	require.NoError(t, err)

	require.NoError(t, s.VerifyCode("a@b.com", code))

	// Second attempt with the same correct code: entry is gone.
	err = s.VerifyCode("a@b.com", code)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyCode_UnknownIdentifier(t *testing.T) {
	s, _ := newTestStore()
	err := s.VerifyCode("nobody@b.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyCode_WrongCandidate(t *testing.T) {
	s, _ := newTestStore()
	code, err := s.IssueCode("a@b.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = s.VerifyCode("a@b.com", wrong)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))

	// A mismatch does not consume the entry.
	require.NoError(t, s.VerifyCode("a@b.com", code))
}

func TestVerifyCode_Expired_PurgesEntry(t *testing.T) {
	s, clk := newTestStore()
	code, err := s.IssueCode("a@b.com")
	require.NoError(t, err)

	clk.Advance(CodeTTL + time.Second)

	err = s.VerifyCode("a@b.com", code)
	assert.True(t, errors.Is(err, domain.ErrExpired))

	// Expiry detection deletes the entry: next read is NotFound, not Expired.
	err = s.VerifyCode("a@b.com", code)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyCode_AtExpiryBoundary_StillValid(t *testing.T) {
	s, clk := newTestStore()
	code, err := s.IssueCode("a@b.com")
	require.NoError(t, err)

	clk.Advance(CodeTTL) // current time == expiresAt

	require.NoError(t, s.VerifyCode("a@b.com", code))
}

func TestIssueCode_OverwriteInvalidatesOldCode(t *testing.T) {
	s, _ := newTestStore()
	old, err := s.IssueCode("a@b.com")
	require.NoError(t, err)

	var fresh string
	for {
		fresh, err = s.IssueCode("a@b.com")
		require.NoError(t, err)
		if fresh != old {
			break
		}
	}

	err = s.VerifyCode("a@b.com", old)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))

	require.NoError(t, s.VerifyCode("a@b.com", fresh))
}

func TestIssueToken_HexEncoded256Bits(t *testing.T) {
	s, _ := newTestStore()
	tok, err := s.IssueToken("a@b.com")
	require.NoError(t, err)
	assert.Len(t, tok, 64)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), tok)
}

func TestLookupToken_ReturnsIdentifierWithoutConsuming(t *testing.T) {
	s, _ := newTestStore()
	tok, err := s.IssueToken("a@b.com")
	require.NoError(t, err)

	email, err := s.LookupToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	// Lookup is read-only; the token is still live.
	email, err = s.LookupToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}

func TestConsumeToken_SingleUse(t *testing.T) {
	s, _ := newTestStore()
	tok, err := s.IssueToken("a@b.com")
	require.NoError(t, err)

	s.ConsumeToken(tok)

	_, err = s.LookupToken(tok)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Consuming again is a no-op.
	s.ConsumeToken(tok)
}

func TestLookupToken_Expired_PurgesEntry(t *testing.T) {
	s, clk := newTestStore()
	tok, err := s.IssueToken("a@b.com")
	require.NoError(t, err)

	clk.Advance(TokenTTL + time.Second)

	_, err = s.LookupToken(tok)
	assert.True(t, errors.Is(err, domain.ErrExpired))

	_, err = s.LookupToken(tok)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLookupToken_Unknown(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.LookupToken("deadbeef")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTokenCount_TracksLiveTokensAndPurgesExpired(t *testing.T) {
	s, clk := newTestStore()
	assert.Zero(t, s.TokenCount())

	tok, err := s.IssueToken("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 1, s.TokenCount())

	s.ConsumeToken(tok)
	assert.Zero(t, s.TokenCount())

	_, err = s.IssueToken("a@b.com")
	require.NoError(t, err)
	clk.Advance(TokenTTL + time.Second)
	assert.Zero(t, s.TokenCount())
}

func TestIssueToken_SameIdentifierKeepsEarlierTokensLive(t *testing.T) {
	s, _ := newTestStore()
	t1, err := s.IssueToken("a@b.com")
	require.NoError(t, err)
	t2, err := s.IssueToken("a@b.com")
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	_, err = s.LookupToken(t1)
	assert.NoError(t, err)
	_, err = s.LookupToken(t2)
	assert.NoError(t, err)
}
