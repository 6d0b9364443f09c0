// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultSessionTimeout applies when SESSION_TIMEOUT is unset or malformed.
const DefaultSessionTimeout = 24 * time.Hour

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token format")
	ErrExpiredToken    = errors.New("admin token expired")
	ErrInvalidTimeout  = errors.New("invalid session timeout")
)

// CheckPassword compares the submitted admin password in constant time.
// An empty configured password never matches.
func CheckPassword(given, want string) error {
	if want == "" {
		return ErrInvalidPassword
	}
	g := sha256.Sum256([]byte(given))
	w := sha256.Sum256([]byte(want))
	if subtle.ConstantTimeCompare(g[:], w[:]) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

// IssueAdminToken creates a signed admin session token of the form
// <unix expiry>.<hmac>. It is stateless: any instance sharing the salt can
// validate it.
func IssueAdminToken(salt string, ttl time.Duration, now time.Time) (string, time.Time) {
	expires := now.Add(ttl).UTC().Truncate(time.Second)
	exp := strconv.FormatInt(expires.Unix(), 10)
	return exp + "." + sign(salt, "admin:"+exp), expires
}

// ValidateAdminToken checks the signature and expiry of an admin token
func ValidateAdminToken(token, salt string, now time.Time) error {
	exp, mac, ok := strings.Cut(token, ".")
	if !ok || exp == "" || mac == "" {
		return ErrInvalidToken
	}
	if !hmac.Equal([]byte(mac), []byte(sign(salt, "admin:"+exp))) {
		return ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if !now.Before(time.Unix(unix, 0)) {
		return ErrExpiredToken
	}
	return nil
}

func sign(salt, msg string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(msg))
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

var timeoutPattern = regexp.MustCompile(`^(\d+)([hd])$`)

// ParseSessionTimeout reads durations written as hours or days, e.g. "12h"
// or "180d". An empty string yields the default.
func ParseSessionTimeout(s string) (time.Duration, error) {
	if s == "" {
		return DefaultSessionTimeout, nil
	}
	m := timeoutPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return DefaultSessionTimeout, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultSessionTimeout, fmt.Errorf("%w: %q", ErrInvalidTimeout, s)
	}
	if m[2] == "d" {
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.Duration(n) * time.Hour, nil
}

// GenerateShareSlug creates a short, deterministic URL slug for a poll
// Uses HMAC for determinism and base62 encoding for URL-friendliness
func GenerateShareSlug(pollID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("slug:" + pollID))
	sum := h.Sum(nil)

	// First 8 bytes keep the slug short
	return base62Encode(sum[:8])
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}

// HashIP creates a one-way hash of an IP address for request logs
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("ip:" + ip))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
