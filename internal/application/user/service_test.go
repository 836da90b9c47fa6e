package user

import (
	"context"
	"testing"

	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

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

func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendWelcomeEmail(to, name string) error {
	return m.Called(to, name).Error(0)
}

func TestRegister_CreatesCustomer(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrNotFound)
	users.On("Put", mock.Anything, mock.Anything).Return(nil)

	mailer := &mockMailer{}
	mailer.On("SendWelcomeEmail", "new@example.com", "New").Return(nil)

	svc := NewService(ServiceDeps{UserRepo: users, Mailer: mailer})

	u, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Name:     "New",
		Email:    "new@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, u.Role)
	assert.True(t, u.Enable)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	mailer.AssertCalled(t, "SendWelcomeEmail", "new@example.com", "New")
}

func TestRegister_EmailConflict(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(ServiceDeps{UserRepo: users, Mailer: &mockMailer{}})

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Name:     "X",
		Email:    "taken@example.com",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	svc := NewService(ServiceDeps{UserRepo: users, Mailer: &mockMailer{}})

	err = svc.ChangePassword(context.Background(), "u1", "wrongpass", "newpass1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChangePassword_SameAsCurrent(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("samepass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	svc := NewService(ServiceDeps{UserRepo: users, Mailer: &mockMailer{}})

	err = svc.ChangePassword(context.Background(), "u1", "samepass", "samepass")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestChangePassword_TooShort(t *testing.T) {
	svc := NewService(ServiceDeps{UserRepo: &mockUserStore{}, Mailer: &mockMailer{}})

	err := svc.ChangePassword(context.Background(), "u1", "whatever", "short")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestChangePassword_StoresNewHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("oldpass1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	users.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		newHash, ok := m["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(newHash), []byte("newpass1")) == nil
	})).Return(nil)

	svc := NewService(ServiceDeps{UserRepo: users, Mailer: &mockMailer{}})

	require.NoError(t, svc.ChangePassword(context.Background(), "u1", "oldpass1", "newpass1"))
	users.AssertExpectations(t)
}

func TestUpdateProfile_EmailCollision(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	users.On("GetByEmail", mock.Anything, "other@example.com").
		Return(&domain.User{UserID: "u2"}, nil)

	svc := NewService(ServiceDeps{UserRepo: users, Mailer: &mockMailer{}})

	_, err := svc.UpdateProfile(context.Background(), "u1", domain.UpdateUserRequest{
		Name:  "N",
		Email: "other@example.com",
		Phone: "+15550001111",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
