// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package account

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/users/auth"
	"github.com/khanhdoan/mailfold/pkg/pointer"
	"github.com/khanhdoan/mailfold/pkg/uuid"
)

// # Test Fakes

type fakeAccountRepo struct {
	users map[string]*auth.User
	stats map[string]Stats
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		users: make(map[string]*auth.User),
		stats: make(map[string]Stats),
	}
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeAccountRepo) Update(_ context.Context, user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeAccountRepo) Stats(_ context.Context, userID string) (Stats, error) {
	return r.stats[userID], nil
}

func newTestService() (*Service, *fakeAccountRepo) {
	repo := newFakeAccountRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

// # Tests

func TestGetProfile_AttachesStats(t *testing.T) {
	service, repo := newTestService()

	id := uuid.New()
	repo.users[id] = &auth.User{ID: id, Name: "Author"}
	repo.stats[id] = Stats{TemplatesCount: 4, LikesReceived: 17}

	profile, err := service.GetProfile(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Author", profile.User.Name)
	assert.Equal(t, 4, profile.Stats.TemplatesCount)
	assert.Equal(t, 17, profile.Stats.LikesReceived)
}

func TestGetProfile_UnknownUser(t *testing.T) {
	service, _ := newTestService()

	_, err := service.GetProfile(context.Background(), uuid.New())
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

func TestGetProfile_MalformedIDIsNotFound(t *testing.T) {
	service, _ := newTestService()

	// Path parameters land in a uuid column; a malformed value must answer
	// NotFound instead of surfacing as a storage error.
	_, err := service.GetProfile(context.Background(), "not-a-uuid")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

func TestUpdateProfile_TrimsAndAppliesDelta(t *testing.T) {
	service, repo := newTestService()

	repo.users["u1"] = &auth.User{
		ID:       "u1",
		Name:     "Old Name",
		Bio:      "Old bio",
		Location: "Hanoi",
	}

	profile, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		Name:    pointer.To("  New Name  "),
		Website: pointer.To("https://mailfold.app"),
	})
	require.NoError(t, err)

	// Provided fields are trimmed and applied.
	assert.Equal(t, "New Name", profile.User.Name)
	assert.Equal(t, "https://mailfold.app", profile.User.Website)

	// Absent fields are left untouched.
	assert.Equal(t, "Old bio", profile.User.Bio)
	assert.Equal(t, "Hanoi", profile.User.Location)
}

func TestUpdateProfile_ClearsFieldWithEmptyString(t *testing.T) {
	service, repo := newTestService()

	repo.users["u1"] = &auth.User{ID: "u1", Name: "Author", Bio: "Something"}

	profile, err := service.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		Bio: pointer.To(""),
	})
	require.NoError(t, err)
	assert.Empty(t, profile.User.Bio)
}
