package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/easymotion-api/internal/application/session"
	"github.com/easymotion-api/internal/domain"
)

type mockSessionService struct {
	mock.Mock
}

func (m *mockSessionService) Login(ctx context.Context, req session.LoginRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*session.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionService) ValidateOTP(ctx context.Context, req session.ValidateOTPRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*session.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockSessionService) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s := args.Get(0); s != nil {
		return s.(*domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func issuedSession(userID string) *session.LoginResult {
	return &session.LoginResult{
		Bearer:       "bearer-token",
		RefreshToken: strings.Repeat("ab", 32),
		Session: &domain.Session{
			SessionID: "sess1",
			UserID:    userID,
			Enable:    true,
			CreatedAt: time.Now().UTC(),
			User:      sampleUser(userID),
		},
	}
}

func TestLogin_ValidationError(t *testing.T) {
	h := NewSessionHandler(new(mockSessionService))

	body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": ""})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := new(mockSessionService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(svc)

	body, _ := json.Marshal(session.LoginRequest{Email: "anna@example.com", Password: "wrong-pass"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_OK(t *testing.T) {
	svc := new(mockSessionService)
	svc.On("Login", mock.Anything, mock.Anything).Return(issuedSession("u1"), nil)
	h := NewSessionHandler(svc)

	body, _ := json.Marshal(session.LoginRequest{Email: "anna@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "bearer-token", env.AccessToken)
	assert.Len(t, env.RefreshToken, 64)
	require.NotNil(t, env.Session)
	assert.Equal(t, "sess1", env.Session.ID)
	require.NotNil(t, env.User)
	assert.Equal(t, "u1", env.User.ID)
	assert.False(t, env.OTPRequired)
}

func TestLogin_OTPRequired(t *testing.T) {
	svc := new(mockSessionService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(&session.LoginResult{OTPRequired: true}, nil)
	h := NewSessionHandler(svc)

	body, _ := json.Marshal(session.LoginRequest{Email: "anna@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.OTPRequired)
	assert.Empty(t, env.AccessToken)
	assert.Nil(t, env.Session)
}

func TestValidateOTP_IssuesSession(t *testing.T) {
	svc := new(mockSessionService)
	svc.On("ValidateOTP", mock.Anything, session.ValidateOTPRequest{Email: "anna@example.com", OTP: "123456"}).
		Return(issuedSession("u1"), nil)
	h := NewSessionHandler(svc)

	body, _ := json.Marshal(session.ValidateOTPRequest{Email: "anna@example.com", OTP: "123456"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/validate-otp", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ValidateOTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "bearer-token", env.AccessToken)
}

func TestRefresh_RotatesToken(t *testing.T) {
	oldToken := strings.Repeat("ab", 32)
	newToken := strings.Repeat("cd", 32)
	svc := new(mockSessionService)
	svc.On("Refresh", mock.Anything, oldToken).Return("new-bearer", newToken, nil)
	h := NewSessionHandler(svc)

	body, _ := json.Marshal(RefreshRequest{RefreshToken: oldToken})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "new-bearer", env.AccessToken)
	assert.Equal(t, newToken, env.RefreshToken)
}

func TestRefresh_Expired(t *testing.T) {
	token := strings.Repeat("ef", 32)
	svc := new(mockSessionService)
	svc.On("Refresh", mock.Anything, token).
		Return("", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(svc)

	body, _ := json.Marshal(RefreshRequest{RefreshToken: token})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := new(mockSessionService)
	svc.On("Logout", mock.Anything, "sess-u1").Return(nil)
	h := NewSessionHandler(svc)

	req := bearerReq(t, p, http.MethodDelete, "/v1/sessions/current", nil, "u1", domain.RoleUser)
	rec := serveAuthed(p, h.Logout, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetCurrent(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := new(mockSessionService)
	s := issuedSession("u1").Session
	svc.On("GetCurrent", mock.Anything, "sess-u1").Return(s, nil)
	h := NewSessionHandler(svc)

	req := bearerReq(t, p, http.MethodGet, "/v1/sessions/current", nil, "u1", domain.RoleUser)
	rec := serveAuthed(p, h.GetCurrent, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Session)
	assert.Equal(t, "sess1", env.Session.ID)
	require.NotNil(t, env.User)
	assert.Equal(t, "anna@example.com", env.User.Email)
}
