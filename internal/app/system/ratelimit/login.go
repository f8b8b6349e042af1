package ratelimit

import (
	"context"
	"net/http"
	"strings"
)

// LoginLimiter provides specialized rate limiting for login attempts.
// It tracks both IP-based and mobile-number-based limits to prevent:
//   - distributed attacks from multiple IPs
//   - targeted attacks on specific accounts
type LoginLimiter struct {
	ip     Store
	mobile Store
}

// NewLoginLimiter combines a per-IP and a per-mobile store.
func NewLoginLimiter(ip, mobile Store) *LoginLimiter {
	return &LoginLimiter{ip: ip, mobile: mobile}
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason, err); err is a store failure.
func (ll *LoginLimiter) Check(r *http.Request, mobile string) (bool, string, error) {
	ctx := r.Context()

	ok, err := ll.ip.Allow(ctx, "ip:"+ClientIP(r))
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, "Too many login attempts. Please wait a minute before trying again.", nil
	}

	if key := strings.TrimSpace(mobile); key != "" {
		ok, err := ll.mobile.Allow(ctx, "mobile:"+key)
		if err != nil {
			return false, "", err
		}
		if !ok {
			return false, "Too many login attempts for this account. Please wait a few minutes.", nil
		}
	}
	return true, "", nil
}

// ResetMobile clears the per-mobile limit after a successful login.
func (ll *LoginLimiter) ResetMobile(ctx context.Context, mobile string) error {
	if key := strings.TrimSpace(mobile); key != "" {
		return ll.mobile.Reset(ctx, "mobile:"+key)
	}
	return nil
}
