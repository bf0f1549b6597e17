package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easymotion-api/internal/domain"
	"github.com/easymotion-api/internal/pkg/id"
	pkgtoken "github.com/easymotion-api/internal/pkg/token"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ValidateOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

// LoginResult carries either an issued session or, when two-factor is
// enabled on the account, only the OTPRequired marker.
type LoginResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
	OTPRequired  bool
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

// accountManager is the slice of the credential manager this service needs.
type accountManager interface {
	GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error)
	GetUserByEmail(ctx context.Context, email string) (domain.Result[*domain.User], error)
	VerifyPassword(hash, plain string) (bool, error)
	IncreaseFailedLoginAttempts(ctx context.Context, userID string) (domain.Result[int], error)
	ClearFailedLoginAttempts(ctx context.Context, userID string) error
	SetLastLogin(ctx context.Context, userID string, at time.Time) error
	GenerateOtpCode(ctx context.Context, userID string) (domain.Result[string], error)
	ValidateOtpCode(ctx context.Context, userID, code string) (bool, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	accounts        accountManager
	sessionRepo     sessionStore
	mailer          mailer
	smsSender       smsSender
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	Accounts        accountManager
	SessionRepo     sessionStore
	Mailer          mailer
	SMSSender       smsSender
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts:        deps.Accounts,
		sessionRepo:     deps.SessionRepo,
		mailer:          deps.Mailer,
		smsSender:       deps.SMSSender,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

// Login checks the password against the stored hash. A wrong password bumps
// the account's failed-attempt counter; a successful login clears it and
// records the login time. Accounts with two-factor enabled get a one-time
// code delivered instead of a session.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	res, err := s.accounts.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	u := res.Data

	ok, err := s.accounts.VerifyPassword(u.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.accounts.IncreaseFailedLoginAttempts(ctx, u.UserID); err != nil {
			slog.Warn("failed to record failed login attempt", "user_id", u.UserID, "err", err)
		}
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if err := s.accounts.ClearFailedLoginAttempts(ctx, u.UserID); err != nil {
		slog.Warn("failed to clear failed login attempts", "user_id", u.UserID, "err", err)
	}
	if err := s.accounts.SetLastLogin(ctx, u.UserID, time.Time{}); err != nil {
		slog.Warn("failed to record last login", "user_id", u.UserID, "err", err)
	}

	if u.TwoFactorEnabled {
		if err := s.deliverOTP(ctx, u); err != nil {
			return nil, err
		}
		return &LoginResult{OTPRequired: true}, nil
	}
	return s.issueSession(ctx, u)
}

// ValidateOTP completes a two-factor login. The code validates exactly once.
func (s *service) ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*LoginResult, error) {
	res, err := s.accounts.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("invalid OTP: %w", domain.ErrUnauthorized)
	}
	ok, err := s.accounts.ValidateOtpCode(ctx, res.Data.UserID, req.OTP)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invalid OTP: %w", domain.ErrUnauthorized)
	}
	return s.issueSession(ctx, res.Data)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	res, err := s.accounts.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, fmt.Errorf("session user gone: %w", domain.ErrUnauthorized)
	}
	sess.User = res.Data
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	res, err := s.accounts.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return "", "", err
	}
	if !res.Success {
		return "", "", fmt.Errorf("session user gone: %w", domain.ErrUnauthorized)
	}
	bearer, err := s.jwtProvider.Sign(res.Data.UserID, res.Data.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}

// deliverOTP generates a one-time code and sends it by SMS when a phone
// number is on file, by email otherwise.
func (s *service) deliverOTP(ctx context.Context, u *domain.User) error {
	codeRes, err := s.accounts.GenerateOtpCode(ctx, u.UserID)
	if err != nil {
		return err
	}
	if u.Phone != nil {
		return s.smsSender.SendSMS(ctx, *u.Phone, "Your EasyMotion login code: "+codeRes.Data)
	}
	return s.mailer.SendEmail(u.Email, "Your login code", "Your EasyMotion login code: "+codeRes.Data)
}

func (s *service) issueSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}
