// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/users/auth"
)

// # Account Repository

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT id, email, passwordhash, name, avatarurl, provider, providerid, role,
		       bio, location, website, company, githubusername, twitterusername, linkedinurl,
		       createdat, updatedat
		FROM users.account
		WHERE id = $1`

	user := &auth.User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.AvatarURL,
		&user.Provider,
		&user.ProviderID,
		&user.Role,
		&user.Bio,
		&user.Location,
		&user.Website,
		&user.Company,
		&user.GithubUsername,
		&user.TwitterUsername,
		&user.LinkedinURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
Update persists changes to a user's mutable profile fields.

Description: Synchronizes the in-memory user state with the database,
refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: Update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, user *auth.User) error {
	const query = `
		UPDATE users.account
		SET name = $2, bio = $3, location = $4, website = $5, company = $6,
		    githubusername = $7, twitterusername = $8, linkedinurl = $9, updatedat = $10
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Bio,
		user.Location,
		user.Website,
		user.Company,
		user.GithubUsername,
		user.TwitterUsername,
		user.LinkedinURL,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	return nil
}

/*
Stats derives the author metrics for a user from the catalog tables.

Description: Counts are computed live with two aggregate subqueries, so the
numbers always reflect the current catalog state.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - Stats: Published template count and total likes received
  - error: Retrieval failures
*/
func (repository *PostgresAccountRepository) Stats(context context.Context, userID string) (Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM core.template t WHERE t.authorid = $1),
			(SELECT COUNT(*) FROM core.templatelike l
			 JOIN core.template t ON t.id = l.templateid
			 WHERE t.authorid = $1)`

	var stats Stats
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&stats.TemplatesCount,
		&stats.LikesReceived,
	)

	if err != nil {
		return Stats{}, fmt.Errorf("postgres_account_repo_stats_failed: %w", err)
	}

	return stats, nil
}
