// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/platform/validate"
)

// # Service Layer

// Service orchestrates business logic for user profiles and author statistics.
type Service struct {
	accountRepository AccountRepository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(accountRepo AccountRepository, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves a user's identity together with their author statistics.

Description: Stats are computed from the catalog at read time (published
template count, likes received across all of their templates).

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: The hydrated profile with stats
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {

	// A malformed ID cannot address any account.
	if !validate.IsUUID(userID) {
		return nil, apperr.NotFound("User")
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	stats, err := service.accountRepository.Stats(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_stats_failed: %w", err)
	}

	return &Profile{User: user, Stats: stats}, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
// Nil pointers mean "leave unchanged".
type UpdateProfileInput struct {
	Name            *string
	Bio             *string
	Location        *string
	Website         *string
	Company         *string
	GithubUsername  *string
	TwitterUsername *string
	LinkedinURL     *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields with
their trimmed values, and synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *Profile: The updated profile with fresh stats
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*Profile, error) {

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	// Overlay only the fields the caller provided, trimmed.
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Location != nil {
		user.Location = strings.TrimSpace(*input.Location)
	}
	if input.Website != nil {
		user.Website = strings.TrimSpace(*input.Website)
	}
	if input.Company != nil {
		user.Company = strings.TrimSpace(*input.Company)
	}
	if input.GithubUsername != nil {
		user.GithubUsername = strings.TrimSpace(*input.GithubUsername)
	}
	if input.TwitterUsername != nil {
		user.TwitterUsername = strings.TrimSpace(*input.TwitterUsername)
	}
	if input.LinkedinURL != nil {
		user.LinkedinURL = strings.TrimSpace(*input.LinkedinURL)
	}

	// Persist changes
	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	stats, err := service.accountRepository.Stats(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_stats_failed: %w", err)
	}

	return &Profile{User: user, Stats: stats}, nil
}
