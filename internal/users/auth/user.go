// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, provider identities) and logic for
sign-in, registration, and refresh-token session lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/khanhdoan/mailfold/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Mailfold platform.
//
// A user arrives either through an OAuth provider (google, github) or through
// classic email registration. Provider records which path created the account.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Name         string       `json:"name"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Provider     string       `json:"provider"`
	ProviderID   string       `json:"-"` // Provider-issued external account ID, never exposed.
	Role         sec.UserRole `json:"role"`

	// Public profile fields, editable via the account endpoints.
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
	Website         string `json:"website,omitempty"`
	Company         string `json:"company,omitempty"`
	GithubUsername  string `json:"github_username,omitempty"`
	TwitterUsername string `json:"twitter_username,omitempty"`
	LinkedinURL     string `json:"linkedin_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Identity Providers

// Providers is the closed set of sign-in methods enabled for this deployment.
//
// The set is built from configuration at startup. There is no ambient global:
// every service that cares about providers receives this value explicitly.
type Providers struct {
	enabled map[string]bool
}

// NewProviders builds the enabled-provider set from configuration.
// Unknown names are ignored so a typo cannot silently enable a new method.
func NewProviders(names []string) Providers {
	enabled := make(map[string]bool, len(names))
	for _, name := range names {
		switch name {
		case ProviderGoogle, ProviderGithub, ProviderEmail:
			enabled[name] = true
		}
	}
	return Providers{enabled: enabled}
}

// Enabled reports whether the given provider may be used for sign-in.
func (p Providers) Enabled(name string) bool {
	return p.enabled[name]
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldName        = "name"
	FieldProvider    = "provider"
	FieldAvatarURL   = "avatar_url"
	FieldToken       = "token"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)
