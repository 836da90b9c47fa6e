package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

func newTestService(sessions *mockSessionStore, users *mockUserStore, signer *mockSigner) Service {
	return NewService(ServiceDeps{
		SessionRepo:     sessions,
		UserRepo:        users,
		JWTProvider:     signer,
		RefreshTokenDur: 30 * 24 * time.Hour,
	})
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := &domain.User{UserID: "u1", Email: "a@example.com", PasswordHash: string(hash), Role: domain.RoleCustomer, Enable: true}

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@example.com").Return(u, nil)

	sessions := &mockSessionStore{}
	sessions.On("Put", mock.Anything, mock.Anything).Return(nil)

	signer := &mockSigner{}
	signer.On("Sign", "u1", domain.RoleCustomer, mock.AnythingOfType("string")).Return("jwt-token", nil)

	svc := newTestService(sessions, users, signer)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", result.Bearer)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "u1", result.Session.UserID)
	assert.True(t, result.Session.Enable)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := &domain.User{UserID: "u1", PasswordHash: string(hash), Enable: true}

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@example.com").Return(u, nil)

	svc := newTestService(&mockSessionStore{}, users, &mockSigner{})

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(&mockSessionStore{}, users, &mockSigner{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	u := &domain.User{UserID: "u1", PasswordHash: string(hash), Enable: false}

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@example.com").Return(u, nil)

	svc := newTestService(&mockSessionStore{}, users, &mockSigner{})

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// --- Refresh ---

func TestRefresh_RotatesToken(t *testing.T) {
	sess := &domain.Session{
		SessionID:        "sess1",
		UserID:           "u1",
		Enable:           true,
		RefreshToken:     "old-token",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}

	sessions := &mockSessionStore{}
	sessions.On("GetByRefreshToken", mock.Anything, "old-token").Return(sess, nil)
	sessions.On("RotateRefreshToken", mock.Anything, "sess1", mock.AnythingOfType("string"), mock.AnythingOfType("int64")).Return(nil)

	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleCustomer}, nil)

	signer := &mockSigner{}
	signer.On("Sign", "u1", domain.RoleCustomer, "sess1").Return("new-jwt", nil)

	svc := newTestService(sessions, users, signer)

	bearer, newToken, err := svc.Refresh(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Equal(t, "new-jwt", bearer)
	assert.NotEmpty(t, newToken)
	assert.NotEqual(t, "old-token", newToken)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	sess := &domain.Session{
		SessionID:        "sess1",
		UserID:           "u1",
		RefreshToken:     "stale",
		RefreshExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}

	sessions := &mockSessionStore{}
	sessions.On("GetByRefreshToken", mock.Anything, "stale").Return(sess, nil)

	svc := newTestService(sessions, &mockUserStore{}, &mockSigner{})

	_, _, err := svc.Refresh(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// --- GetCurrent / Logout ---

func TestGetCurrent_DisabledSession(t *testing.T) {
	sessions := &mockSessionStore{}
	sessions.On("Get", mock.Anything, "sess1").Return(&domain.Session{SessionID: "sess1", Enable: false}, nil)

	svc := newTestService(sessions, &mockUserStore{}, &mockSigner{})

	_, err := svc.GetCurrent(context.Background(), "sess1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogout_DisablesSession(t *testing.T) {
	sessions := &mockSessionStore{}
	sessions.On("Update", mock.Anything, "sess1", map[string]interface{}{"enable": false}).Return(nil)

	svc := newTestService(sessions, &mockUserStore{}, &mockSigner{})

	require.NoError(t, svc.Logout(context.Background(), "sess1"))
	sessions.AssertExpectations(t)
}
