package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldRefreshToken     = "refresh_token"
	fieldRefreshExpiresAt = "refresh_expires_at"

	fieldPasswordHash        = "password_hash"
	fieldResetToken          = "password_reset_token"
	fieldResetExpiresAt      = "password_reset_expires_at"
	fieldConfirmToken        = "email_confirm_token"
	fieldConfirmExpiresAt    = "email_confirm_expires_at"
	fieldEmail               = "email"
	fieldEmailVerified       = "is_email_verified"
	fieldTwoFactorEnabled    = "two_factor_enabled"
	fieldOTPCode             = "otp_code"
	fieldOTPExpiresAt        = "otp_expires_at"
	fieldFailedLoginAttempts = "failed_login_attempts"
	fieldLastLoginAt         = "last_login_at"

	fieldRead     = "read"
	fieldImageKey = "image_key"
)
