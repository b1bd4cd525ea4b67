package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecom-auth-api/internal/domain"
	"gorm.io/gorm"
)

// AccountRepo persists user and seller identities. An email is unique per
// role, enforced by the composite index on (role, email).
type AccountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) GetByEmail(ctx context.Context, role, email string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).
		Where("role = ? AND email = ? AND deleted_at IS NULL", role, email).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %s/%s: %w", role, email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

// FindByEmail looks an email up across roles, users first. The password-reset
// flow identifies accounts by email alone.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, role := range []string{domain.RoleUser, domain.RoleSeller} {
		a, err := r.GetByEmail(ctx, role, email)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND deleted_at IS NULL", accountID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// Create inserts the account. A concurrent insert that loses the race on the
// unique index comes back as domain.ErrConflict.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("account %s/%s already exists: %w", a.Role, a.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("account_id = ?", accountID).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	return nil
}
