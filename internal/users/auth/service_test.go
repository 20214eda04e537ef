// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/platform/sec"
)

// # Test Fakes

type fakeUserRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return apperr.Conflict("Resource already exists")
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) SyncIdentity(_ context.Context, user *User) error {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

// failingUserRepo simulates a storage outage on the email lookup.
type failingUserRepo struct {
	*fakeUserRepo
	findByEmailErr error
}

func (r *failingUserRepo) FindByEmail(_ context.Context, _ string) (*User, error) {
	return nil, r.findByEmailErr
}

type fakeSessionRepo struct {
	sessions map[string]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]string)}
}

func (r *fakeSessionRepo) Create(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	r.sessions[tokenHash] = userID
	return nil
}

func (r *fakeSessionRepo) FindUserID(_ context.Context, tokenHash string) (string, error) {
	if userID, ok := r.sessions[tokenHash]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Session")
}

func (r *fakeSessionRepo) Delete(_ context.Context, tokenHash string) error {
	delete(r.sessions, tokenHash)
	return nil
}

type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _, _, _ string, _ time.Duration) (string, error) {
	return "jwt-for-" + userID, nil
}

func newTestService(providers ...string) (*Service, *fakeUserRepo, *fakeSessionRepo) {
	if len(providers) == 0 {
		providers = []string{ProviderGoogle, ProviderGithub, ProviderEmail}
	}
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	service := NewService(users, sessions, fakeTokenProvider{}, NewProviders(providers))
	return service, users, sessions
}

// # Provider Sign-In

func TestSignInWithProvider_CreatesNewAccount(t *testing.T) {
	service, users, sessions := newTestService()

	session, err := service.SignInWithProvider(context.Background(), SignInInput{
		Provider:   ProviderGoogle,
		ProviderID: "google-oauth2|108934721",
		Email:      "Khanh@Example.com",
		Name:       "Khanh Doan",
		AvatarURL:  "https://cdn.example.com/avatar.png",
	})
	require.NoError(t, err)
	require.NotNil(t, session.User)

	// Email is normalized to lowercase before becoming the identity key.
	assert.Equal(t, "khanh@example.com", session.User.Email)
	assert.Equal(t, ProviderGoogle, session.User.Provider)
	assert.Equal(t, "google-oauth2|108934721", session.User.ProviderID)
	assert.Equal(t, sec.RoleMember, session.User.Role)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	// The session must be stored hashed, never as the raw token.
	_, rawStored := sessions.sessions[session.RefreshToken]
	assert.False(t, rawStored)
	userID, err := sessions.FindUserID(context.Background(), sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)

	assert.Len(t, users.byID, 1)
}

func TestSignInWithProvider_ReusesExistingAccount(t *testing.T) {
	service, users, _ := newTestService()

	first, err := service.SignInWithProvider(context.Background(), SignInInput{
		Provider: ProviderGithub,
		Email:    "dev@example.com",
		Name:     "Old Name",
	})
	require.NoError(t, err)

	second, err := service.SignInWithProvider(context.Background(), SignInInput{
		Provider:   ProviderGithub,
		ProviderID: "gh-4412",
		Email:      "dev@example.com",
		Name:       "New Name",
		AvatarURL:  "https://cdn.example.com/new.png",
	})
	require.NoError(t, err)

	// Same stable account, refreshed profile and backfilled external ID.
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "New Name", second.User.Name)
	assert.Equal(t, "https://cdn.example.com/new.png", second.User.AvatarURL)
	assert.Equal(t, "gh-4412", second.User.ProviderID)
	assert.Len(t, users.byID, 1)
}

func TestSignInWithProvider_LookupFailureIsNotAbsence(t *testing.T) {
	users := &failingUserRepo{
		fakeUserRepo:   newFakeUserRepo(),
		findByEmailErr: errors.New("connection reset by peer"),
	}
	sessions := newFakeSessionRepo()
	service := NewService(users, sessions, fakeTokenProvider{}, NewProviders([]string{ProviderGoogle}))

	_, err := service.SignInWithProvider(context.Background(), SignInInput{
		Provider: ProviderGoogle,
		Email:    "someone@example.com",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset by peer")

	// A failing lookup must not be mistaken for an absent account: no user is
	// provisioned and no session is established.
	assert.Empty(t, users.byID)
	assert.Empty(t, sessions.sessions)
}

func TestSignInWithProvider_DisabledProvider(t *testing.T) {
	service, _, _ := newTestService(ProviderEmail)

	_, err := service.SignInWithProvider(context.Background(), SignInInput{
		Provider: ProviderGoogle,
		Email:    "someone@example.com",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}

func TestNewProviders_IgnoresUnknownNames(t *testing.T) {
	providers := NewProviders([]string{"google", "facebook", "email"})

	assert.True(t, providers.Enabled(ProviderGoogle))
	assert.True(t, providers.Enabled(ProviderEmail))
	assert.False(t, providers.Enabled("facebook"))
	assert.False(t, providers.Enabled(ProviderGithub))
}

// # Email Registration & Login

func TestRegisterWithEmail_Success(t *testing.T) {
	service, _, _ := newTestService()

	session, err := service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "correct-horse-battery",
		Name:     "New Member",
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderEmail, session.User.Provider)
	assert.NotEmpty(t, session.User.PasswordHash)
	assert.NotEqual(t, "correct-horse-battery", session.User.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct-horse-battery", session.User.PasswordHash))
}

func TestRegisterWithEmail_Conflict(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password-one",
		Name:     "First",
	})
	require.NoError(t, err)

	_, err = service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "Taken@Example.com",
		Password: "password-two",
		Name:     "Second",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

func TestRegisterWithEmail_LookupFailureIsNotAbsence(t *testing.T) {
	users := &failingUserRepo{
		fakeUserRepo:   newFakeUserRepo(),
		findByEmailErr: errors.New("connection reset by peer"),
	}
	service := NewService(users, newFakeSessionRepo(), fakeTokenProvider{}, NewProviders([]string{ProviderEmail}))

	_, err := service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "correct-horse-battery",
		Name:     "New Member",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset by peer")
	assert.Empty(t, users.byID)
}

func TestLoginWithEmail_WrongPassword(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "member@example.com",
		Password: "right-password",
		Name:     "Member",
	})
	require.NoError(t, err)

	_, err = service.LoginWithEmail(context.Background(), LoginInput{
		Email:    "member@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}

func TestLoginWithEmail_OAuthAccountHasNoPassword(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.SignInWithProvider(context.Background(), SignInInput{
		Provider: ProviderGoogle,
		Email:    "oauth@example.com",
		Name:     "OAuth User",
	})
	require.NoError(t, err)

	// Accounts created via OAuth cannot be entered through the password path.
	_, err = service.LoginWithEmail(context.Background(), LoginInput{
		Email:    "oauth@example.com",
		Password: "",
	})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

// # Session Lifecycle

func TestRefreshSession_RotatesToken(t *testing.T) {
	service, _, _ := newTestService()

	session, err := service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "rotate@example.com",
		Password: "some-password",
		Name:     "Rotator",
	})
	require.NoError(t, err)

	rotated, err := service.RefreshSession(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, session.User.ID, rotated.User.ID)

	// Replaying the old token after rotation must fail.
	_, err = service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

func TestLogout_IsIdempotent(t *testing.T) {
	service, _, _ := newTestService()

	session, err := service.RegisterWithEmail(context.Background(), RegisterInput{
		Email:    "logout@example.com",
		Password: "some-password",
		Name:     "Leaver",
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))

	// Second logout with the same (now dead) token still succeeds.
	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))

	// The refresh token is unusable after logout.
	_, err = service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
}
