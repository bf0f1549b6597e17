package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/easymotion-api/internal/application/auth"
	"github.com/easymotion-api/internal/domain"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, req auth.PasswordResetRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockAuthService) RequestEmailConfirmation(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuthService) ConfirmEmailChange(ctx context.Context, userID string, req auth.EmailChangeRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *mockAuthService) SetEmail(ctx context.Context, userID, email string) error {
	return m.Called(ctx, userID, email).Error(0)
}

func (m *mockAuthService) SetPassword(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

func TestRecoveryRequest_UnknownEmailMasked(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("RequestPasswordRecovery", mock.Anything, "ghost@example.com").
		Return(fmt.Errorf("user not found: %w", domain.ErrNotFound))
	h := NewPasswordRecoveryHandler(svc)

	body, _ := json.Marshal(auth.PasswordRecoveryRequest{Email: "ghost@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/v1/password-recovery", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	// Whether the email exists must not be observable from the response.
	require.Equal(t, http.StatusOK, rec.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "if the email exists, a recovery message has been sent", env.Message)
	assert.Empty(t, env.Error)
}

func TestRecoveryRequest_KnownEmail(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("RequestPasswordRecovery", mock.Anything, "anna@example.com").Return(nil)
	h := NewPasswordRecoveryHandler(svc)

	body, _ := json.Marshal(auth.PasswordRecoveryRequest{Email: "anna@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/v1/password-recovery", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "if the email exists, a recovery message has been sent", env.Message)
	svc.AssertExpectations(t)
}

func TestRecoveryRequest_InfrastructureFault(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("RequestPasswordRecovery", mock.Anything, "anna@example.com").
		Return(errors.New("dynamo unavailable"))
	h := NewPasswordRecoveryHandler(svc)

	body, _ := json.Marshal(auth.PasswordRecoveryRequest{Email: "anna@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/v1/password-recovery", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dynamo")
}

func TestRecoveryRequest_ValidationError(t *testing.T) {
	h := NewPasswordRecoveryHandler(new(mockAuthService))

	body, _ := json.Marshal(map[string]string{"email": "not-an-email"})
	req := httptest.NewRequest(http.MethodPost, "/v1/password-recovery", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Request(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRecoveryConfirm_BadToken(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("ResetPassword", mock.Anything, mock.Anything).
		Return(fmt.Errorf("invalid or expired reset token: %w", domain.ErrBadRequest))
	h := NewPasswordRecoveryHandler(svc)

	body, _ := json.Marshal(auth.PasswordResetRequest{
		UserID: "u1", Token: strings.Repeat("ab", 32), NewPassword: "new-password",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/password-recovery/confirm", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Confirm(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoveryConfirm_OK(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("ResetPassword", mock.Anything, mock.Anything).Return(nil)
	h := NewPasswordRecoveryHandler(svc)

	body, _ := json.Marshal(auth.PasswordResetRequest{
		UserID: "u1", Token: strings.Repeat("cd", 32), NewPassword: "new-password",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/password-recovery/confirm", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Confirm(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestSetPasswordHandler_ValidationError(t *testing.T) {
	h := NewPasswordRecoveryHandler(new(mockAuthService))

	body, _ := json.Marshal(auth.SetPasswordRequest{Password: "short"})
	req := withChiID(httptest.NewRequest(http.MethodPut, "/v1/users/u1/password", bytes.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.SetPassword(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetPasswordHandler_OK(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("SetPassword", mock.Anything, "u1", "forced-password").Return(nil)
	h := NewPasswordRecoveryHandler(svc)

	body, _ := json.Marshal(auth.SetPasswordRequest{Password: "forced-password"})
	req := withChiID(httptest.NewRequest(http.MethodPut, "/v1/users/u1/password", bytes.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	h.SetPassword(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
