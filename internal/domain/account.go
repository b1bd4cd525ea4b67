package domain

import "time"

// Account roles. A storefront customer and a seller are separate identities
// even when they share an email address, so role is part of the unique key.
const (
	RoleUser   = "user"
	RoleSeller = "seller"
)

// Account is a user or seller identity row. The composite unique index on
// (role, email) is the authoritative guard against duplicate registrations;
// the existence checks in the services are a fast path only.
type Account struct {
	AccountID    string     `json:"id" gorm:"primaryKey;column:account_id"`
	Role         string     `json:"role" gorm:"size:16;uniqueIndex:idx_accounts_role_email"`
	Name         string     `json:"name"`
	Email        string     `json:"email" gorm:"size:320;uniqueIndex:idx_accounts_role_email"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	PhoneNumber  *string    `json:"phone_number,omitempty"`
	Country      *string    `json:"country,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created"`
	UpdatedAt    time.Time  `json:"updated"`
}

type RegisterRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,mail_addr"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	PhoneNumber *string `json:"phone_number"`
	Country     *string `json:"country"`
}

type VerifyRegistrationRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,mail_addr"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	OTP         string  `json:"otp" validate:"required"`
	PhoneNumber *string `json:"phone_number"`
	Country     *string `json:"country"`
}

type ForgetPasswordRequest struct {
	Email string `json:"email" validate:"required,mail_addr"`
}

type VerifyForgetPasswordRequest struct {
	Email string `json:"email" validate:"required,mail_addr"`
	OTP   string `json:"otp" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,mail_addr"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
	ResetToken  string `json:"reset_token" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,mail_addr"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user seller"`
}
