package session

import (
	"context"
	"errors"

	"github.com/ecom-auth-api/internal/domain"
	"github.com/ecom-auth-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	// Login authenticates an account and returns a signed bearer token.
	Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Account, error)
	// Get returns the account behind a bearer token's claims.
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

// JWTSigner is the token provider the login flow needs.
type JWTSigner interface {
	Sign(accountID, role, email string) (string, error)
}

type service struct {
	accounts accountStore
	jwt      JWTSigner
}

func NewService(accounts accountStore, jwt JWTSigner) Service {
	return &service{accounts: accounts, jwt: jwt}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.Account, error) {
	if err := validate.Struct(&req); err != nil {
		return "", nil, domain.NewError(domain.ErrValidation, err.Error())
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}

	a, err := s.accounts.GetByEmail(ctx, role, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Never says which of email/password was wrong.
			return "", nil, domain.NewError(domain.ErrUnauthorized, "Invalid email or password.")
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, domain.NewError(domain.ErrUnauthorized, "Invalid email or password.")
	}

	if s.jwt == nil {
		return "", nil, errors.New("token signing is not configured")
	}
	tok, err := s.jwt.Sign(a.AccountID, a.Role, a.Email)
	if err != nil {
		return "", nil, err
	}
	return tok, a, nil
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.Get(ctx, accountID)
}
