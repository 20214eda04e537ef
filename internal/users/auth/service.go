// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
Package auth implements the core identity and access management system.

It handles provider-based sign-in, email registration, secure password hashing,
and session lifecycle management via JWT and Refresh tokens (stored in Redis).

Architecture:

  - Service: Orchestrates business logic (SignIn, Register, Refresh).
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Sessions).
  - Security: Leverages Bcrypt and RSA-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/platform/sec"
	"github.com/khanhdoan/mailfold/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - name: The display name of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, name, role string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, sign-in,
// or session logic must be reviewed before merge.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	providers         Providers
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	providers Providers,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		providers:         providers,
	}
}

// AuthSession represents a successfully established user session.
type AuthSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

// # Provider Sign-In Flow

// SignInInput holds the verified profile received from an OAuth provider.
//
// ProviderID is the provider-issued external account identifier (e.g. the
// Google subject). The email stays the stable identity key; the external ID
// is recorded alongside it for traceability.
type SignInInput struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

/*
SignInWithProvider resolves a provider profile into a local account and session.

Description: Find-or-create by email. A returning user gets their name and
avatar refreshed from the latest provider profile; a new user gets a member
account created on the spot.

Parameters:
  - context: context.Context
  - input: SignInInput

Returns:
  - *AuthSession: Transport-ready session identifiers
  - err: ValidationError (disabled provider) or storage errors
*/
func (service *Service) SignInWithProvider(context context.Context, input SignInInput) (*AuthSession, error) {

	// Reject sign-in methods not enabled for this deployment.
	if !service.providers.Enabled(input.Provider) {
		return nil, apperr.ValidationError(fmt.Sprintf("Sign-in provider %q is not enabled", input.Provider))
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Find-or-create: email is the stable identity key across providers.
	// Only a proven absence takes the create branch; a failing lookup must
	// surface instead of silently provisioning a duplicate account.
	user, err := service.userRepository.FindByEmail(context, email)
	switch {
	case err == nil:
		// Returning user: keep the local profile in sync with the provider.
		if input.Name != "" {
			user.Name = input.Name
		}
		if input.AvatarURL != "" {
			user.AvatarURL = input.AvatarURL
		}
		if input.ProviderID != "" {
			user.ProviderID = input.ProviderID
		}
		if err := service.userRepository.SyncIdentity(context, user); err != nil {
			return nil, fmt.Errorf("auth_service_signin_sync_failed: %w", err)
		}

	case apperr.IsNotFound(err):
		// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
		user = &User{
			ID:         uuid.New(),
			Email:      email,
			Name:       input.Name,
			AvatarURL:  input.AvatarURL,
			Provider:   input.Provider,
			ProviderID: input.ProviderID,
			Role:       sec.RoleMember,
		}
		if err := service.userRepository.Create(context, user); err != nil {
			return nil, fmt.Errorf("auth_service_signin_create_failed: %w", err)
		}

	default:
		return nil, fmt.Errorf("auth_service_signin_lookup_failed: %w", err)
	}

	return service.establishSession(context, user)
}

// # Email Registration Flow

// RegisterInput holds the data required to enroll a new member via email.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

/*
RegisterWithEmail validates, hashes, and persists a brand new user account.

Description: Deep-enrollment of a new member through the email provider,
handling password hashing and immediate session establishment.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *AuthSession: Session for the freshly created account
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) RegisterWithEmail(context context.Context, input RegisterInput) (*AuthSession, error) {

	// The email provider must be explicitly enabled.
	if !service.providers.Enabled(ProviderEmail) {
		return nil, apperr.ValidationError("Email registration is not enabled")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Verify email uniqueness. Return a client-safe Conflict err. Lookup
	// failures other than a proven absence are not a green light to enroll.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         input.Name,
		Provider:     ProviderEmail,
		Role:         sec.RoleMember,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return service.establishSession(context, user)
}

// # Authentication Flow

// LoginInput defines credentials for an email authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
LoginWithEmail validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new session with rotated security tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *AuthSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) LoginWithEmail(context context.Context, input LoginInput) (*AuthSession, error) {

	if !service.providers.Enabled(ProviderEmail) {
		return nil, apperr.ValidationError("Email login is not enabled")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := service.userRepository.FindByEmail(context, email)

	// Unknown email answers the same generic message to prevent enumeration.
	// Anything else is a storage failure, not a rejection.
	if apperr.IsNotFound(err) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// OAuth-created accounts carry no password hash and cannot use this path.
	if user.PasswordHash == "" {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.establishSession(context, user)
}

/*
Logout permanently revokes the user's active session.

Description: Ensures that a tracked refresh token can never be used again.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token
	tokenHash := sec.HashToken(refreshToken)

	// Delete the session. A missing session means the token was already
	// invalid, which we treat as a successful logout (idempotent operation).
	if err := service.sessionRepository.Delete(context, tokenHash); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, deletes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *AuthSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*AuthSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	userID, err := service.sessionRepository.FindUserID(context, tokenHash)

	// If (err != nil) the token is either expired, already rotated, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Delete the old session to prevent replay attacks
	if err := service.sessionRepository.Delete(context, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the user associated with this session
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found or suspended")
	}

	return service.establishSession(context, user)
}

// establishSession issues a fresh access/refresh token pair and persists the
// refresh-token session.
func (service *Service) establishSession(context context.Context, user *User) (*AuthSession, error) {

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, user.Name, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Persist the tracking session, hashed, with TTL matching expiry
	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := service.sessionRepository.Create(context, sec.HashToken(refreshToken), user.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &AuthSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}
