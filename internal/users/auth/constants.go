// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package auth

import "time"

// # Identity Providers

const (
	// ProviderGoogle identifies accounts created through Google OAuth.
	ProviderGoogle = "google"

	// ProviderGithub identifies accounts created through GitHub OAuth.
	ProviderGithub = "github"

	// ProviderEmail identifies accounts created with email and password.
	ProviderEmail = "email"
)

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// We keep it short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32
)
