package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/ecom-auth-api/internal/domain"
)

// Store is the expiring key-value store the engines run against.
// Get returns "" for absent or expired keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Mailer delivers a templated notification. Delivery is best-effort from the
// issuer's point of view.
type Mailer interface {
	SendTemplate(to, subject, templateID string, vars map[string]string) error
}

// Issuer gates and performs OTP creation and delivery for an email identity.
type Issuer struct {
	kv     Store
	mailer Mailer
}

func NewIssuer(kv Store, mailer Mailer) *Issuer {
	return &Issuer{kv: kv, mailer: mailer}
}

// CheckIssuancePermitted runs the read-only lockout checks, most severe first.
// It has no side effects on any path.
func (i *Issuer) CheckIssuancePermitted(ctx context.Context, email string) error {
	locked, err := i.kv.Get(ctx, lockKey(email))
	if err != nil {
		return err
	}
	if locked != "" {
		return domain.NewError(domain.ErrAccountLocked,
			"Account locked due to too many failed attempts. You can request a new OTP after 30 minutes.")
	}

	spam, err := i.kv.Get(ctx, spamLockKey(email))
	if err != nil {
		return err
	}
	if spam != "" {
		return domain.NewError(domain.ErrTooManyRequests,
			"Too many OTP requests. Please wait 1 hour before trying again.")
	}

	cooldown, err := i.kv.Get(ctx, cooldownKey(email))
	if err != nil {
		return err
	}
	if cooldown != "" {
		return domain.NewError(domain.ErrCooldownActive,
			"Please wait 1 minute before requesting a new OTP.")
	}
	return nil
}

// TrackIssuanceRequest counts this request against the rolling one-hour
// window. Crossing the cap writes the spam lock in the same step, so no
// further request can pass CheckIssuancePermitted until it expires. The
// window TTL is refreshed on every request: an hour from the most recent
// request, not from the first.
func (i *Issuer) TrackIssuanceRequest(ctx context.Context, email string) error {
	raw, err := i.kv.Get(ctx, requestKey(email))
	if err != nil {
		return err
	}
	count := 0
	if raw != "" {
		count, _ = strconv.Atoi(raw)
	}

	if count >= maxRequestsPerWindow {
		if err := i.kv.Set(ctx, spamLockKey(email), "locked", spamLockTTL); err != nil {
			return err
		}
		return domain.NewError(domain.ErrTooManyRequests,
			"Too many OTP requests. Please wait 1 hour before trying again.")
	}

	return i.kv.Set(ctx, requestKey(email), strconv.Itoa(count+1), requestWindowTTL)
}

// IssueOTP generates a fresh code, stores it, arms the send cooldown and
// dispatches the notification mail. A reissue silently overwrites any code
// still pending for the identity. The mail is fire-and-forget: a delivery
// failure is logged but never rolls back the stored code.
func (i *Issuer) IssueOTP(ctx context.Context, name, email, templateID string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := i.kv.Set(ctx, codeKey(email), code, codeTTL); err != nil {
		return err
	}
	if err := i.kv.Set(ctx, cooldownKey(email), "true", cooldownTTL); err != nil {
		return err
	}

	subject := subjectFor(templateID)
	go func() {
		if err := i.mailer.SendTemplate(email, subject, templateID, map[string]string{
			"name": name,
			"otp":  code,
		}); err != nil {
			slog.Warn("otp mail delivery failed", "email", email, "template", templateID, "err", err)
		}
	}()

	return nil
}

// generateCode draws a code uniformly from [1000, 9999]. The range never
// produces a value below 1000, so a leading zero is impossible.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

func subjectFor(templateID string) string {
	switch templateID {
	case "forgot-password-user-mail":
		return "Reset your password"
	default:
		return "Activate your account"
	}
}
