// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		SyncIdentity refreshes name, avatar, and the provider-issued external ID
		from the latest provider profile.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	SyncIdentity(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the contract for volatile refresh-token sessions.
//
// Sessions live in Redis with a TTL matching the refresh token lifetime, so
// expired sessions vanish without a cleanup job.
type SessionRepository interface {

	/*
		Create stores a session mapping the token hash to a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, tokenHash string, userID string, ttl time.Duration) error

	/*
		FindUserID resolves the userID associated with a given token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - string: UserID
		  - error: apperr.NotFound if absent or expired
	*/
	FindUserID(context context.Context, tokenHash string) (string, error)

	/*
		Delete removes a session, invalidating its refresh token.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(context context.Context, tokenHash string) error
}
