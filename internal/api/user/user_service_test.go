package user

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-guest-concierge/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByPhone(ctx context.Context, phoneNumber string) (*types.User, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockRepository) GetByToken(ctx context.Context, sessionToken string) (*types.User, error) {
	args := m.Called(ctx, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, phoneNumber, name, email, sessionToken string) (*types.User, error) {
	args := m.Called(ctx, phoneNumber, name, email, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockRepository) RefreshLogin(ctx context.Context, id int64, name, email, sessionToken string) (*types.User, error) {
	args := m.Called(ctx, id, name, email, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockRepository) ClearToken(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+91 98765-43210", "919876543210"},
		{"(555) 000-1111", "5550001111"},
		{"919876543210", "919876543210"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), tc.in)
	}
}

func TestLogin_NewUser(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, testLogger())

	repo.On("GetByPhone", mock.Anything, "919876543210").Return(nil, nil)
	repo.On("Create", mock.Anything, "919876543210", "Asha", "asha@example.com",
		mock.MatchedBy(isUUID)).
		Return(&types.User{ID: 1, PhoneNumber: "919876543210", Name: "Asha", IsActive: true}, nil)

	resp, err := svc.Login(context.Background(), types.LoginRequest{
		PhoneNumber: "+91 98765 43210",
		Name:        "Asha",
		Email:       "asha@example.com",
	})

	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
	assert.True(t, isUUID(resp.SessionToken))
	repo.AssertExpectations(t)
}

func TestLogin_ExistingUserRotatesToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, testLogger())

	repo.On("GetByPhone", mock.Anything, "5550001111").
		Return(&types.User{ID: 9, PhoneNumber: "5550001111"}, nil)
	repo.On("RefreshLogin", mock.Anything, int64(9), "", "", mock.MatchedBy(isUUID)).
		Return(&types.User{ID: 9, PhoneNumber: "5550001111", IsActive: true}, nil)

	resp, err := svc.Login(context.Background(), types.LoginRequest{PhoneNumber: "555-000-1111"})

	require.NoError(t, err)
	assert.False(t, resp.IsNewUser)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_RejectsEmptyPhone(t *testing.T) {
	svc := NewServiceImpl(new(MockRepository), testLogger())

	_, err := svc.Login(context.Background(), types.LoginRequest{PhoneNumber: "n/a"})
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestLogout(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, testLogger())

	repo.On("GetByToken", mock.Anything, "tok-1").
		Return(&types.User{ID: 3, PhoneNumber: "5550001111"}, nil)
	repo.On("ClearToken", mock.Anything, int64(3)).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "tok-1"))
	repo.AssertExpectations(t)
}

func TestLogout_UnknownToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, testLogger())

	repo.On("GetByToken", mock.Anything, "tok-x").Return(nil, nil)

	assert.ErrorIs(t, svc.Logout(context.Background(), "tok-x"), ErrInvalidToken)
}
