package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the account credential record: identity, secret material, pending
// security tokens and login telemetry. Token and expiry fields are always set
// or cleared together.
type User struct {
	UserID       string  `json:"id" dynamodbav:"user_id"`
	Username     string  `json:"username" dynamodbav:"username"`
	Email        string  `json:"email" dynamodbav:"email"`
	Phone        *string `json:"phone,omitempty" dynamodbav:"phone"`
	PasswordHash string  `json:"-" dynamodbav:"password_hash"`
	Role         string  `json:"role" dynamodbav:"role"`
	FirstName    string  `json:"first_name" dynamodbav:"first_name"`
	LastName     string  `json:"last_name" dynamodbav:"last_name"`

	IsEmailVerified bool `json:"is_email_verified" dynamodbav:"is_email_verified"`

	PasswordResetToken     *string    `json:"-" dynamodbav:"password_reset_token"`
	PasswordResetExpiresAt *time.Time `json:"-" dynamodbav:"password_reset_expires_at"`

	EmailConfirmToken     *string    `json:"-" dynamodbav:"email_confirm_token"`
	EmailConfirmExpiresAt *time.Time `json:"-" dynamodbav:"email_confirm_expires_at"`

	TwoFactorEnabled bool       `json:"two_factor_enabled" dynamodbav:"two_factor_enabled"`
	OTPCode          *string    `json:"-" dynamodbav:"otp_code"`
	OTPExpiresAt     *time.Time `json:"-" dynamodbav:"otp_expires_at"`

	FailedLoginAttempts int        `json:"-" dynamodbav:"failed_login_attempts"`
	LastLoginAt         *time.Time `json:"last_login,omitempty" dynamodbav:"last_login_at"`

	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username  string  `json:"username" validate:"required"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone"`
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
}

// UpdateUserRequest is a field-enumerated patch. Nil pointers leave the
// stored value untouched; credential fields are deliberately absent and can
// only change through the account manager's dedicated operations.
type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}
