package http

import (
	"context"
	"time"

	"github.com/ecom-auth-api/internal/domain"
)

// AccountRepository is the minimal interface the router requires from the account store.
type AccountRepository interface {
	GetByEmail(ctx context.Context, role, email string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
}

// KVStore is the minimal interface the router requires from the expiring key-value store.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Mailer is the minimal interface the router requires from the notification sender.
type Mailer interface {
	SendTemplate(to, subject, templateID string, vars map[string]string) error
}
