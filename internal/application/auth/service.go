package auth

import (
	"context"
	"fmt"

	"github.com/easymotion-api/internal/domain"
)

type PasswordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	Token       string `json:"token" validate:"required,len=64"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type EmailChangeRequest struct {
	Token    string `json:"token" validate:"required"`
	NewEmail string `json:"new_email" validate:"required,email"`
}

type SetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type Service interface {
	RequestPasswordRecovery(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req PasswordResetRequest) error
	RequestEmailConfirmation(ctx context.Context, userID string) error
	ConfirmEmailChange(ctx context.Context, userID string, req EmailChangeRequest) error
	SetEmail(ctx context.Context, userID, email string) error
	SetPassword(ctx context.Context, userID, password string) error
}

// accountManager is the slice of the credential manager this service needs.
type accountManager interface {
	GetUserByEmail(ctx context.Context, email string) (domain.Result[*domain.User], error)
	GetUserByID(ctx context.Context, userID string) (domain.Result[*domain.User], error)
	GeneratePasswordResetToken(ctx context.Context, userID string) (domain.Result[string], error)
	ResetPassword(ctx context.Context, userID, resetToken, newPlain string) (domain.Result[*domain.User], error)
	GenerateEmailConfirmationToken(ctx context.Context, userID string) (domain.Result[string], error)
	ChangeEmail(ctx context.Context, userID, confirmToken, newEmail string) (domain.Result[*domain.User], error)
	SetEmail(ctx context.Context, userID, email string) (domain.Result[*domain.User], error)
	SetPassword(ctx context.Context, userID, plain string) (domain.Result[*domain.User], error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	accounts accountManager
	mailer   mailer
}

func NewService(accounts accountManager, mailer mailer) Service {
	return &service{accounts: accounts, mailer: mailer}
}

// RequestPasswordRecovery issues a reset token and mails it. An unknown email
// is reported to the caller as not found; the handler masks that.
func (s *service) RequestPasswordRecovery(ctx context.Context, email string) error {
	res, err := s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	u := res.Data

	tokRes, err := s.accounts.GeneratePasswordResetToken(ctx, u.UserID)
	if err != nil {
		return err
	}
	if !tokRes.Success {
		return fmt.Errorf("%s: %w", tokRes.Message(), tokRes.Err())
	}
	body := "Use this token within one hour to reset your password: " + tokRes.Data
	return s.mailer.SendEmail(u.Email, "Password recovery", body)
}

func (s *service) ResetPassword(ctx context.Context, req PasswordResetRequest) error {
	res, err := s.accounts.ResetPassword(ctx, req.UserID, req.Token, req.NewPassword)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s: %w", res.Message(), res.Err())
	}
	return nil
}

// RequestEmailConfirmation issues a confirmation token and mails it to the
// account's current address.
func (s *service) RequestEmailConfirmation(ctx context.Context, userID string) error {
	res, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	u := res.Data

	tokRes, err := s.accounts.GenerateEmailConfirmationToken(ctx, userID)
	if err != nil {
		return err
	}
	if !tokRes.Success {
		return fmt.Errorf("%s: %w", tokRes.Message(), tokRes.Err())
	}
	body := "Use this token within 24 hours to confirm your email address: " + tokRes.Data
	return s.mailer.SendEmail(u.Email, "Confirm your email", body)
}

func (s *service) ConfirmEmailChange(ctx context.Context, userID string, req EmailChangeRequest) error {
	res, err := s.accounts.ChangeEmail(ctx, userID, req.Token, req.NewEmail)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s: %w", res.Message(), res.Err())
	}
	return nil
}

// SetEmail overwrites the address without a confirmation token. Admin path.
func (s *service) SetEmail(ctx context.Context, userID, email string) error {
	res, err := s.accounts.SetEmail(ctx, userID, email)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s: %w", res.Message(), res.Err())
	}
	return nil
}

// SetPassword force-resets the password without checking the old one. Admin
// path; any pending reset token is invalidated by the write.
func (s *service) SetPassword(ctx context.Context, userID, password string) error {
	res, err := s.accounts.SetPassword(ctx, userID, password)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s: %w", res.Message(), res.Err())
	}
	return nil
}
