package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecom-auth-api/internal/domain"
	pkgtoken "github.com/ecom-auth-api/internal/pkg/token"
	"github.com/ecom-auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// resetTokenTTL bounds the window between a verified OTP and the actual
// password write.
const resetTokenTTL = 10 * time.Minute

func resetTokenKey(email string) string { return "otp_reset_token:" + email }

type Service interface {
	// RequestReset dispatches a reset OTP to an existing account's email.
	RequestReset(ctx context.Context, req domain.ForgetPasswordRequest) error
	// VerifyResetOTP checks the code and, on success, mints a short-lived
	// reset token the caller must present to ResetPassword.
	VerifyResetOTP(ctx context.Context, req domain.VerifyForgetPasswordRequest) (string, error)
	// ResetPassword consumes the reset token and writes the new password.
	ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
}

type accountStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type otpIssuer interface {
	CheckIssuancePermitted(ctx context.Context, email string) error
	TrackIssuanceRequest(ctx context.Context, email string) error
	IssueOTP(ctx context.Context, name, email, templateID string) error
}

type otpVerifier interface {
	VerifyOTP(ctx context.Context, email, submitted string) error
}

type service struct {
	accounts accountStore
	kv       kvStore
	issuer   otpIssuer
	verifier otpVerifier
}

type ServiceDeps struct {
	AccountRepo accountStore
	KV          kvStore
	Issuer      otpIssuer
	Verifier    otpVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.AccountRepo,
		kv:       deps.KV,
		issuer:   deps.Issuer,
		verifier: deps.Verifier,
	}
}

func (s *service) RequestReset(ctx context.Context, req domain.ForgetPasswordRequest) error {
	if err := validate.Struct(&req); err != nil {
		return domain.NewError(domain.ErrValidation, err.Error())
	}

	a, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewError(domain.ErrNotFound, "No account found with this email.")
		}
		return err
	}

	if err := s.issuer.CheckIssuancePermitted(ctx, a.Email); err != nil {
		return err
	}
	if err := s.issuer.TrackIssuanceRequest(ctx, a.Email); err != nil {
		return err
	}
	return s.issuer.IssueOTP(ctx, a.Name, a.Email, "forgot-password-user-mail")
}

func (s *service) VerifyResetOTP(ctx context.Context, req domain.VerifyForgetPasswordRequest) (string, error) {
	if err := validate.Struct(&req); err != nil {
		return "", domain.NewError(domain.ErrValidation, err.Error())
	}

	if err := s.verifier.VerifyOTP(ctx, req.Email, req.OTP); err != nil {
		return "", err
	}

	tok, err := pkgtoken.NewResetToken()
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, resetTokenKey(req.Email), tok, resetTokenTTL); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := validate.Struct(&req); err != nil {
		return domain.NewError(domain.ErrValidation, err.Error())
	}

	stored, err := s.kv.Get(ctx, resetTokenKey(req.Email))
	if err != nil {
		return err
	}
	if stored == "" || stored != req.ResetToken {
		return domain.NewError(domain.ErrUnauthorized,
			"Reset session expired or invalid. Please verify a new OTP.")
	}

	a, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewError(domain.ErrNotFound, "No account found with this email.")
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.NewPassword)) == nil {
		return domain.NewError(domain.ErrValidation,
			"New password must be different from the old one.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, a.AccountID, string(hash)); err != nil {
		return err
	}

	// One reset per verification: the token is spent.
	return s.kv.Delete(ctx, resetTokenKey(req.Email))
}
