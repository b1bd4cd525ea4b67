package otp

import "time"

// All OTP state is keyed by email in the expiring KV store. Redis TTLs are the
// only expiry mechanism; nothing here sweeps keys.
const (
	codeTTL          = 5 * time.Minute
	cooldownTTL      = time.Minute
	requestWindowTTL = time.Hour
	spamLockTTL      = time.Hour
	attemptTTL       = 5 * time.Minute
	lockTTL          = 30 * time.Minute

	// maxRequestsPerWindow caps issuances per rolling hour, maxFailedAttempts
	// caps wrong guesses per code.
	maxRequestsPerWindow = 5
	maxFailedAttempts    = 3
)

func codeKey(email string) string     { return "otp:" + email }
func cooldownKey(email string) string { return "otp_cooldown:" + email }
func requestKey(email string) string  { return "otp_request_count:" + email }
func spamLockKey(email string) string { return "otp_spam_lock:" + email }
func attemptKey(email string) string  { return "otp_failed_attempts:" + email }
func lockKey(email string) string     { return "otp_lock:" + email }
