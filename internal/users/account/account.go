// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
Package account handles user profile management and author statistics.

It provides functionalities for users to view and update their identity data,
and exposes the public author metrics (published templates, likes received)
shown on profile pages.

# Architecture

  - Entities: Stats, Profile (DTO).
  - Domain: This package depends on the auth package for the User entity.
*/
package account

import (
	"context"

	"github.com/khanhdoan/mailfold/internal/users/auth"
)

// # Domain Entities

// Stats carries the public author metrics for a profile page.
//
// Both counters are derived from the catalog at read time, never stored,
// so they cannot drift from the underlying data.
type Stats struct {
	TemplatesCount int `json:"templates_count"`
	LikesReceived  int `json:"likes_received"`
}

// Profile bundles the user identity with their author statistics.
type Profile struct {
	User  *auth.User `json:"user"`
	Stats Stats      `json:"stats"`
}

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		Stats derives the author metrics for a user from the catalog tables.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - Stats: Published template count and total likes received
		  - error: Retrieval failures
	*/
	Stats(context context.Context, userID string) (Stats, error)
}

// # Field Identifiers

const (
	FieldName            = "name"
	FieldBio             = "bio"
	FieldLocation        = "location"
	FieldWebsite         = "website"
	FieldCompany         = "company"
	FieldGithubUsername  = "github_username"
	FieldTwitterUsername = "twitter_username"
	FieldLinkedinURL     = "linkedin_url"
)

// Length caps for mutable profile fields.
const (
	MaxNameLen     = 100
	MaxBioLen      = 500
	MaxShortField  = 100
	MaxURLFieldLen = 200
)
