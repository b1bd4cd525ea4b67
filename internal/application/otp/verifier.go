package otp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ecom-auth-api/internal/domain"
)

// Verifier validates submitted codes with an escalating lockout.
type Verifier struct {
	kv Store
}

func NewVerifier(kv Store) *Verifier {
	return &Verifier{kv: kv}
}

// VerifyOTP compares the submitted code against the stored one.
//
// The lock check runs before the code lookup so a locked identity always sees
// the lockout error, never a misleading "OTP not found" from the code delete
// that accompanies the lock. On the third consecutive mismatch the identity
// is locked for 30 minutes, the attempt count is pinned for the lock's
// lifetime and the code is deleted, so no stale code outlives the lock.
// A match clears the attempt counter and the code together: a verified code
// can never be replayed.
func (v *Verifier) VerifyOTP(ctx context.Context, email, submitted string) error {
	locked, err := v.kv.Get(ctx, lockKey(email))
	if err != nil {
		return err
	}
	if locked != "" {
		return domain.NewError(domain.ErrAccountLocked,
			"Account locked due to too many failed attempts. You can request a new OTP after 30 minutes.")
	}

	stored, err := v.kv.Get(ctx, codeKey(email))
	if err != nil {
		return err
	}
	if stored == "" {
		return domain.NewError(domain.ErrOtpNotFound,
			"OTP not found or expired. Please request a new one.")
	}

	raw, err := v.kv.Get(ctx, attemptKey(email))
	if err != nil {
		return err
	}
	attempts := 0
	if raw != "" {
		attempts, _ = strconv.Atoi(raw)
	}

	if submitted != stored {
		attempts++
		if attempts >= maxFailedAttempts {
			if err := v.kv.Set(ctx, lockKey(email), "locked", lockTTL); err != nil {
				return err
			}
			if err := v.kv.Set(ctx, attemptKey(email), strconv.Itoa(attempts), lockTTL); err != nil {
				return err
			}
			if err := v.kv.Delete(ctx, codeKey(email)); err != nil {
				return err
			}
			return domain.NewError(domain.ErrAccountLocked,
				"Account locked due to too many failed attempts. You can request a new OTP after 30 minutes.")
		}
		if err := v.kv.Set(ctx, attemptKey(email), strconv.Itoa(attempts), attemptTTL); err != nil {
			return err
		}
		return domain.NewError(domain.ErrInvalidOtp,
			fmt.Sprintf("Invalid OTP. You have %d attempts left.", maxFailedAttempts-attempts))
	}

	if err := v.kv.Delete(ctx, attemptKey(email)); err != nil {
		return err
	}
	return v.kv.Delete(ctx, codeKey(email))
}
