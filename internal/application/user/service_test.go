package user

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/easymotion-api/internal/domain"
)

// --- mocks ---

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}
func (m *mockAccounts) GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}
func (m *mockAccounts) UpdateUser(ctx context.Context, userID string, patch domain.UpdateUserRequest) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, userID, patch)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}
func (m *mockAccounts) DeleteUser(ctx context.Context, userID string) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}
func (m *mockAccounts) ChangePassword(ctx context.Context, userID, oldPlain, newPlain string) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, userID, oldPlain, newPlain)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}
func (m *mockAccounts) SetTwoFactor(ctx context.Context, userID string, enabled bool) (domain.Result[*domain.User], error) {
	args := m.Called(ctx, userID, enabled)
	return args.Get(0).(domain.Result[*domain.User]), args.Error(1)
}

type mockUserLister struct{ mock.Mock }

func (m *mockUserLister) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) DisableByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- helpers ---

func newService(am *mockAccounts, ul *mockUserLister, ss *mockSessionStore) Service {
	return NewService(ServiceDeps{Accounts: am, UserRepo: ul, SessionRepo: ss})
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Username:  "alice",
		Password:  "password123",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func ptr[T any](v T) *T { return &v }

// --- Register tests ---

func TestRegister_Conflict(t *testing.T) {
	am := &mockAccounts{}
	am.On("CreateUser", mock.Anything, baseReq()).
		Return(domain.Fail[*domain.User](http.StatusConflict, "email already registered"), nil)

	svc := newService(am, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "email already registered")
	am.AssertExpectations(t)
}

func TestRegister_HappyPath(t *testing.T) {
	am := &mockAccounts{}
	created := &domain.User{UserID: "u1", Username: "alice", Role: domain.RoleUser}
	am.On("CreateUser", mock.Anything, baseReq()).Return(domain.Ok(created), nil)

	svc := newService(am, nil, nil)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, domain.RoleUser, u.Role)
	am.AssertExpectations(t)
}

func TestRegister_PropagatesStoreFault(t *testing.T) {
	am := &mockAccounts{}
	fault := errors.New("dynamo error")
	am.On("CreateUser", mock.Anything, baseReq()).Return(domain.Result[*domain.User]{}, fault)

	svc := newService(am, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.Equal(t, fault, err)
}

// --- List tests ---

func TestList_DefaultsLimit(t *testing.T) {
	ul := &mockUserLister{}
	ul.On("ScanPage", mock.Anything, int32(50), "").Return([]domain.User{{UserID: "u1"}}, "next", nil)

	svc := newService(nil, ul, nil)
	users, cursor, err := svc.List(context.Background(), 0, "")

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "next", cursor)
	ul.AssertExpectations(t)
}

// --- Get / Update tests ---

func TestGet_NotFound(t *testing.T) {
	am := &mockAccounts{}
	am.On("GetUserByID", mock.Anything, "missing").
		Return(domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil)

	svc := newService(am, nil, nil)
	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdate_InvalidRole(t *testing.T) {
	am := &mockAccounts{}
	patch := domain.UpdateUserRequest{Role: ptr("superuser")}
	am.On("UpdateUser", mock.Anything, "u1", patch).
		Return(domain.Fail[*domain.User](http.StatusBadRequest, "invalid role"), nil)

	svc := newService(am, nil, nil)
	_, err := svc.Update(context.Background(), "u1", patch)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_HappyPath(t *testing.T) {
	am := &mockAccounts{}
	patch := domain.UpdateUserRequest{Username: ptr("bob")}
	am.On("UpdateUser", mock.Anything, "u1", patch).
		Return(domain.Ok(&domain.User{UserID: "u1", Username: "bob"}), nil)

	svc := newService(am, nil, nil)
	u, err := svc.Update(context.Background(), "u1", patch)

	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	am.AssertExpectations(t)
}

// --- Delete tests ---

func TestDelete_AlsoDisablesSessions(t *testing.T) {
	am := &mockAccounts{}
	ss := &mockSessionStore{}
	am.On("DeleteUser", mock.Anything, "u1").Return(domain.Ok[*domain.User](nil), nil)
	ss.On("DisableByUser", mock.Anything, "u1").Return(nil)

	svc := newService(am, nil, ss)
	err := svc.Delete(context.Background(), "u1")

	require.NoError(t, err)
	am.AssertExpectations(t)
	ss.AssertExpectations(t)
}

func TestDelete_PropagatesStoreFault(t *testing.T) {
	am := &mockAccounts{}
	fault := errors.New("dynamo error")
	am.On("DeleteUser", mock.Anything, "u1").Return(domain.Result[*domain.User]{}, fault)

	svc := newService(am, nil, &mockSessionStore{})
	err := svc.Delete(context.Background(), "u1")

	require.Error(t, err)
	assert.Equal(t, fault, err)
}

// --- ChangePassword tests ---

func TestChangePassword_WrongCurrent(t *testing.T) {
	am := &mockAccounts{}
	am.On("ChangePassword", mock.Anything, "u1", "wrong", "newpassword1").
		Return(domain.Fail[*domain.User](http.StatusBadRequest, "current password is incorrect"), nil)

	svc := newService(am, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "wrong", "newpassword1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestChangePassword_HappyPath(t *testing.T) {
	am := &mockAccounts{}
	am.On("ChangePassword", mock.Anything, "u1", "oldpassword1", "newpassword1").
		Return(domain.Ok[*domain.User](nil), nil)

	svc := newService(am, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "oldpassword1", "newpassword1")

	require.NoError(t, err)
	am.AssertExpectations(t)
}
