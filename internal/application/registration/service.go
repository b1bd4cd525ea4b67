package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecom-auth-api/internal/domain"
	"github.com/ecom-auth-api/internal/pkg/id"
	"github.com/ecom-auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	// RequestRegistration validates the submitted fields and dispatches an
	// activation OTP. No account row is created at this stage.
	RequestRegistration(ctx context.Context, role string, req domain.RegisterRequest) error
	// ConfirmRegistration verifies the OTP and creates the account row.
	ConfirmRegistration(ctx context.Context, role string, req domain.VerifyRegistrationRequest) (*domain.Account, error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
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
	issuer   otpIssuer
	verifier otpVerifier
}

type ServiceDeps struct {
	AccountRepo accountStore
	Issuer      otpIssuer
	Verifier    otpVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accounts: deps.AccountRepo,
		issuer:   deps.Issuer,
		verifier: deps.Verifier,
	}
}

func (s *service) RequestRegistration(ctx context.Context, role string, req domain.RegisterRequest) error {
	if err := validate.Struct(&req); err != nil {
		return domain.NewError(domain.ErrValidation, err.Error())
	}
	if err := checkSellerFields(role, req.PhoneNumber, req.Country); err != nil {
		return err
	}

	if _, err := s.accounts.GetByEmail(ctx, role, req.Email); err == nil {
		return domain.NewError(domain.ErrValidation,
			fmt.Sprintf("An account with this email already exists as %s.", role))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := s.issuer.CheckIssuancePermitted(ctx, req.Email); err != nil {
		return err
	}
	if err := s.issuer.TrackIssuanceRequest(ctx, req.Email); err != nil {
		return err
	}
	return s.issuer.IssueOTP(ctx, req.Name, req.Email, role+"-activation-mail")
}

func (s *service) ConfirmRegistration(ctx context.Context, role string, req domain.VerifyRegistrationRequest) (*domain.Account, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, domain.NewError(domain.ErrValidation, err.Error())
	}
	if err := checkSellerFields(role, req.PhoneNumber, req.Country); err != nil {
		return nil, err
	}

	// Fast path only: the unique (role, email) index is the real guard
	// against two confirm calls racing past this check.
	if _, err := s.accounts.GetByEmail(ctx, role, req.Email); err == nil {
		return nil, domain.NewError(domain.ErrValidation,
			fmt.Sprintf("An account with this email already exists as %s.", role))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.verifier.VerifyOTP(ctx, req.Email, req.OTP); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Role:         role,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		Country:      req.Country,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewError(domain.ErrValidation,
				fmt.Sprintf("An account with this email already exists as %s.", role))
		}
		return nil, err
	}
	return a, nil
}

func checkSellerFields(role string, phone, country *string) error {
	if role != domain.RoleSeller {
		return nil
	}
	if phone == nil || *phone == "" {
		return domain.NewError(domain.ErrValidation, "field 'phone_number' is required for sellers")
	}
	if country == nil || *country == "" {
		return domain.NewError(domain.ErrValidation, "field 'country' is required for sellers")
	}
	return nil
}
