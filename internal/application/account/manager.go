package account

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/easymotion-api/internal/domain"
	"github.com/easymotion-api/internal/pkg/id"
	"github.com/easymotion-api/internal/pkg/password"
	pkgtoken "github.com/easymotion-api/internal/pkg/token"
)

// Security token lifetimes.
const (
	resetTokenTTL   = time.Hour
	confirmTokenTTL = 24 * time.Hour
	otpTTL          = 5 * time.Minute
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldUsername            = "username"
	fieldEmail               = "email"
	fieldPhone               = "phone"
	fieldFirstName           = "first_name"
	fieldLastName            = "last_name"
	fieldRole                = "role"
	fieldPasswordHash        = "password_hash"
	fieldResetToken          = "password_reset_token"
	fieldResetExpiresAt      = "password_reset_expires_at"
	fieldConfirmToken        = "email_confirm_token"
	fieldConfirmExpiresAt    = "email_confirm_expires_at"
	fieldEmailVerified       = "is_email_verified"
	fieldTwoFactorEnabled    = "two_factor_enabled"
	fieldOTPCode             = "otp_code"
	fieldOTPExpiresAt        = "otp_expires_at"
	fieldFailedLoginAttempts = "failed_login_attempts"
	fieldLastLoginAt         = "last_login_at"
)

// credentialStore is the persistence gateway for account credential records.
type credentialStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetWithActiveResetToken(ctx context.Context, userID string, now time.Time) (*domain.User, error)
	GetByConfirmToken(ctx context.Context, userID, token string, now time.Time) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	UpdateIfTwoFactorEnabled(ctx context.Context, userID string, updates map[string]interface{}) (bool, error)
	AddFailedLoginAttempt(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID string) error
}

// Manager owns every read and mutation of the credential record's secret
// fields: password hashes, reset and confirmation tokens, one-time codes and
// login telemetry. Expected business failures come back as failure Results;
// storage faults come back as plain errors and are never wrapped into a Result.
type Manager struct {
	repo credentialStore
	now  func() time.Time
}

func NewManager(repo credentialStore) *Manager {
	return &Manager{repo: repo, now: time.Now}
}

// CreateUser registers a new credential record. An existing record with the
// same email or username fails with a conflict. The password is hashed before
// anything is persisted.
func (m *Manager) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.Result[*domain.User], error) {
	if _, err := m.repo.GetByEmail(ctx, req.Email); err == nil {
		return domain.Fail[*domain.User](http.StatusConflict, "email already registered"), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Result[*domain.User]{}, err
	}
	if _, err := m.repo.GetByUsername(ctx, req.Username); err == nil {
		return domain.Fail[*domain.User](http.StatusConflict, "username already taken"), nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Result[*domain.User]{}, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	now := m.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.repo.Put(ctx, u); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return domain.Ok(u), nil
}

func (m *Manager) GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error) {
	u, err := m.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil
	}
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return domain.Ok(u), nil
}

func (m *Manager) GetUserByEmail(ctx context.Context, email string) (domain.Result[*domain.User], error) {
	u, err := m.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil
	}
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return domain.Ok(u), nil
}

// UpdateUser applies a field-enumerated patch. Existence is checked up front
// rather than relying on the store's own not-found semantics, so a missing
// user fails before any write is attempted.
func (m *Manager) UpdateUser(ctx context.Context, userID string, patch domain.UpdateUserRequest) (domain.Result[*domain.User], error) {
	res, err := m.GetUserByID(ctx, userID)
	if err != nil || !res.Success {
		return res, err
	}

	updates := map[string]interface{}{}
	if patch.Username != nil {
		updates[fieldUsername] = *patch.Username
	}
	if patch.Email != nil {
		updates[fieldEmail] = *patch.Email
	}
	if patch.Phone != nil {
		updates[fieldPhone] = *patch.Phone
	}
	if patch.FirstName != nil {
		updates[fieldFirstName] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates[fieldLastName] = *patch.LastName
	}
	if patch.Role != nil {
		switch *patch.Role {
		case domain.RoleAdmin, domain.RoleUser:
			updates[fieldRole] = *patch.Role
		default:
			return domain.Fail[*domain.User](http.StatusBadRequest, "invalid role"), nil
		}
	}
	if len(updates) == 0 {
		return res, nil
	}
	if err := m.repo.Update(ctx, userID, updates); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return m.GetUserByID(ctx, userID)
}

// DeleteUser removes the credential record unconditionally.
func (m *Manager) DeleteUser(ctx context.Context, userID string) (domain.Result[*domain.User], error) {
	if err := m.repo.Delete(ctx, userID); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return domain.Ok[*domain.User](nil), nil
}

// GeneratePasswordResetToken issues a 64-character hex token valid for one
// hour and persists it with its expiry.
func (m *Manager) GeneratePasswordResetToken(ctx context.Context, userID string) (domain.Result[string], error) {
	if _, err := m.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail[string](http.StatusNotFound, "user not found"), nil
		}
		return domain.Result[string]{}, err
	}
	tok, err := pkgtoken.NewResetToken()
	if err != nil {
		return domain.Result[string]{}, err
	}
	expiry := m.now().UTC().Add(resetTokenTTL)
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldResetToken:     tok,
		fieldResetExpiresAt: expiry,
	}); err != nil {
		return domain.Result[string]{}, err
	}
	return domain.Ok(tok), nil
}

// SetPassword stores a new password hash without checking the old password.
// Administrative path — any pending reset token is invalidated.
func (m *Manager) SetPassword(ctx context.Context, userID, plain string) (domain.Result[*domain.User], error) {
	if _, err := m.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil
		}
		return domain.Result[*domain.User]{}, err
	}
	return m.storePassword(ctx, userID, plain)
}

// ChangePassword verifies the current password before storing the new one.
// The stored hash is untouched when verification fails.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPlain, newPlain string) (domain.Result[*domain.User], error) {
	u, err := m.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil
	}
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	ok, err := password.Verify(u.PasswordHash, oldPlain)
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	if !ok {
		return domain.Fail[*domain.User](http.StatusBadRequest, "current password is incorrect"), nil
	}
	return m.storePassword(ctx, userID, newPlain)
}

// ResetPassword consumes a reset token. The load is scoped to an unexpired
// token, so a missing user, a missing token and an expired token all fail the
// same way; only then is the token string compared.
func (m *Manager) ResetPassword(ctx context.Context, userID, resetToken, newPlain string) (domain.Result[*domain.User], error) {
	u, err := m.repo.GetWithActiveResetToken(ctx, userID, m.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Fail[*domain.User](http.StatusBadRequest, "invalid or expired reset token"), nil
	}
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	if u.PasswordResetToken == nil || *u.PasswordResetToken != resetToken {
		return domain.Fail[*domain.User](http.StatusBadRequest, "invalid or expired reset token"), nil
	}
	return m.storePassword(ctx, userID, newPlain)
}

// storePassword hashes and persists the password, clearing the reset token
// and its expiry in the same write.
func (m *Manager) storePassword(ctx context.Context, userID, plain string) (domain.Result[*domain.User], error) {
	hash, err := password.Hash(plain)
	if err != nil {
		return domain.Result[*domain.User]{}, err
	}
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldPasswordHash:   hash,
		fieldResetToken:     nil,
		fieldResetExpiresAt: nil,
	}); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return domain.Ok[*domain.User](nil), nil
}

// GenerateEmailConfirmationToken issues a UUID token valid for 24 hours.
func (m *Manager) GenerateEmailConfirmationToken(ctx context.Context, userID string) (domain.Result[string], error) {
	if _, err := m.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail[string](http.StatusNotFound, "user not found"), nil
		}
		return domain.Result[string]{}, err
	}
	tok := pkgtoken.NewConfirmationToken()
	expiry := m.now().UTC().Add(confirmTokenTTL)
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldConfirmToken:     tok,
		fieldConfirmExpiresAt: expiry,
	}); err != nil {
		return domain.Result[string]{}, err
	}
	return domain.Ok(tok), nil
}

// ChangeEmail sets a new address after matching an unexpired confirmation
// token, and marks the address verified. The confirmation token is left in
// place and runs out on its own expiry.
func (m *Manager) ChangeEmail(ctx context.Context, userID, confirmToken, newEmail string) (domain.Result[*domain.User], error) {
	if _, err := m.repo.GetByConfirmToken(ctx, userID, confirmToken, m.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail[*domain.User](http.StatusBadRequest, "invalid or expired confirmation token"), nil
		}
		return domain.Result[*domain.User]{}, err
	}
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldEmail:         newEmail,
		fieldEmailVerified: true,
	}); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return m.GetUserByID(ctx, userID)
}

// SetEmail sets the address and marks it verified without a token check.
// Administrative path.
func (m *Manager) SetEmail(ctx context.Context, userID, email string) (domain.Result[*domain.User], error) {
	if _, err := m.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil
		}
		return domain.Result[*domain.User]{}, err
	}
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldEmail:         email,
		fieldEmailVerified: true,
	}); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return m.GetUserByID(ctx, userID)
}

func (m *Manager) SetTwoFactor(ctx context.Context, userID string, enabled bool) (domain.Result[*domain.User], error) {
	if _, err := m.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail[*domain.User](http.StatusNotFound, "user not found"), nil
		}
		return domain.Result[*domain.User]{}, err
	}
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldTwoFactorEnabled: enabled,
	}); err != nil {
		return domain.Result[*domain.User]{}, err
	}
	return m.GetUserByID(ctx, userID)
}

// GenerateOtpCode issues a 6-digit code valid for five minutes. The write is
// conditioned on two-factor being enabled; when it isn't, the update matches
// zero rows and the generated (unpersisted) code is still returned.
func (m *Manager) GenerateOtpCode(ctx context.Context, userID string) (domain.Result[string], error) {
	code, err := pkgtoken.NewOTP()
	if err != nil {
		return domain.Result[string]{}, err
	}
	expiry := m.now().UTC().Add(otpTTL)
	if _, err := m.repo.UpdateIfTwoFactorEnabled(ctx, userID, map[string]interface{}{
		fieldOTPCode:      code,
		fieldOTPExpiresAt: expiry,
	}); err != nil {
		return domain.Result[string]{}, err
	}
	return domain.Ok(code), nil
}

// ValidateOtpCode reports whether code matches the pending one-time code.
// A missing user, a mismatch, a missing expiry and a past expiry all return
// false. On a match the code is cleared, so it validates exactly once.
func (m *Manager) ValidateOtpCode(ctx context.Context, userID, code string) (bool, error) {
	u, err := m.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if u.OTPCode == nil || *u.OTPCode != code {
		return false, nil
	}
	if u.OTPExpiresAt == nil || u.OTPExpiresAt.Before(m.now().UTC()) {
		return false, nil
	}
	if err := m.repo.Update(ctx, userID, map[string]interface{}{
		fieldOTPCode:      nil,
		fieldOTPExpiresAt: nil,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// SetLastLogin records the login timestamp; the zero time means "now".
func (m *Manager) SetLastLogin(ctx context.Context, userID string, at time.Time) error {
	if at.IsZero() {
		at = m.now().UTC()
	}
	return m.repo.Update(ctx, userID, map[string]interface{}{
		fieldLastLoginAt: at,
	})
}

// IncreaseFailedLoginAttempts bumps the counter by one at the storage layer
// and returns the new count. The increment is atomic, so concurrent failures
// never lose updates.
func (m *Manager) IncreaseFailedLoginAttempts(ctx context.Context, userID string) (domain.Result[int], error) {
	count, err := m.repo.AddFailedLoginAttempt(ctx, userID)
	if err != nil {
		return domain.Result[int]{}, err
	}
	return domain.Ok(count), nil
}

func (m *Manager) ClearFailedLoginAttempts(ctx context.Context, userID string) error {
	return m.repo.Update(ctx, userID, map[string]interface{}{
		fieldFailedLoginAttempts: 0,
	})
}

// HashPassword derives an Argon2id hash for the plain password.
func (m *Manager) HashPassword(plain string) (string, error) {
	return password.Hash(plain)
}

// VerifyPassword reports whether plain matches the encoded hash.
func (m *Manager) VerifyPassword(hash, plain string) (bool, error) {
	return password.Verify(hash, plain)
}
