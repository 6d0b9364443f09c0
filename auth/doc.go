// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides the shared admin credential, admin tokens and poll slugs.

# Admin Login

There is one admin password for the whole instance. CheckPassword compares it
in constant time:

	if err := auth.CheckPassword(req.Password, cfg.AdminPassword); err != nil {
		// 401
	}

# Admin Tokens

A successful login issues a stateless token signed with HMAC-SHA256:

	token, expires := auth.IssueAdminToken(cfg.AdminKeySalt, cfg.SessionTimeout, time.Now())
	err := auth.ValidateAdminToken(token, cfg.AdminKeySalt, time.Now())

The token is "<unix expiry>.<signature>". Nothing is stored server side, so
rotating ADMIN_KEY_SALT logs every admin out.

Session lifetimes are configured as hours or days:

	ttl, err := auth.ParseSessionTimeout("180d")

# Share Slugs

Share slugs create URL-friendly identifiers for polls:

	slug := auth.GenerateShareSlug(pollID, salt)

Slugs are base62 encoded (alphanumeric only) and deterministic from the poll
ID and salt.

# IP Hashing

Voter IPs are logged only as a salted hash:

	hash := auth.HashIP(ipAddress, salt)
*/
package auth
