// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package template

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
)

// # Test Fakes

// fakeRepository is an in-memory [Repository] honoring the same visibility
// rules as the Postgres implementation.
type fakeRepository struct {
	templates map[string]*Template
	likes     map[string]map[string]bool // templateID -> set of userIDs

	findByIDCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		templates: make(map[string]*Template),
		likes:     make(map[string]map[string]bool),
	}
}

func (r *fakeRepository) visible(tpl *Template, viewerID string) bool {
	return tpl.IsPublic || tpl.AuthorID == viewerID
}

// overlaps reports whether the two tag sets share at least one element.
func overlaps(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// view returns a copy hydrated with the computed metrics for the viewer.
func (r *fakeRepository) view(tpl *Template, viewerID string) *Template {
	clone := *tpl
	clone.LikesCount = len(r.likes[tpl.ID])
	clone.IsLiked = viewerID != "" && r.likes[tpl.ID][viewerID]
	return &clone
}

func (r *fakeRepository) Create(_ context.Context, tpl *Template) error {
	for _, existing := range r.templates {
		if existing.Slug == tpl.Slug {
			return apperr.Conflict("Resource already exists")
		}
	}
	clone := *tpl
	r.templates[tpl.ID] = &clone
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id, viewerID string) (*Template, error) {
	r.findByIDCalls++
	tpl, ok := r.templates[id]
	if !ok || !r.visible(tpl, viewerID) {
		return nil, apperr.NotFound("Template")
	}
	return r.view(tpl, viewerID), nil
}

func (r *fakeRepository) FindBySlug(_ context.Context, slug, viewerID string) (*Template, error) {
	for _, tpl := range r.templates {
		if tpl.Slug == slug {
			if !r.visible(tpl, viewerID) {
				return nil, apperr.NotFound("Template")
			}
			return r.view(tpl, viewerID), nil
		}
	}
	return nil, apperr.NotFound("Template")
}

func (r *fakeRepository) List(_ context.Context, filter Filter, viewerID string, limit, offset int) ([]*Template, int, error) {
	var matched []*Template
	for _, tpl := range r.templates {
		// The general catalogue serves public rows only, whoever is asking.
		if !tpl.IsPublic {
			continue
		}
		if filter.AuthorID != "" && tpl.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Query != "" {
			needle := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(tpl.Title), needle) &&
				!strings.Contains(strings.ToLower(tpl.Description), needle) {
				continue
			}
		}
		if len(filter.Tags) > 0 && !overlaps(tpl.Tags, filter.Tags) {
			continue
		}
		matched = append(matched, r.view(tpl, viewerID))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeRepository) ListByAuthor(_ context.Context, authorID string, limit, offset int) ([]*Template, int, error) {
	var matched []*Template
	for _, tpl := range r.templates {
		if tpl.AuthorID == authorID {
			matched = append(matched, r.view(tpl, authorID))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeRepository) ListLikedBy(_ context.Context, userID string, limit, offset int) ([]*Template, int, error) {
	var matched []*Template
	for id, users := range r.likes {
		if users[userID] {
			if tpl, ok := r.templates[id]; ok && r.visible(tpl, userID) {
				matched = append(matched, r.view(tpl, userID))
			}
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeRepository) Update(_ context.Context, tpl *Template) error {
	clone := *tpl
	r.templates[tpl.ID] = &clone
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	delete(r.templates, id)
	delete(r.likes, id)
	return nil
}

func (r *fakeRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, tpl := range r.templates {
		if tpl.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) ToggleLike(_ context.Context, templateID, userID string) (LikeResult, error) {
	users := r.likes[templateID]
	if users == nil {
		users = make(map[string]bool)
		r.likes[templateID] = users
	}

	result := LikeResult{}
	if users[userID] {
		delete(users, userID)
	} else {
		users[userID] = true
		result.IsLiked = true
	}
	result.LikesCount = len(users)
	return result, nil
}

func (r *fakeRepository) IncrementViews(_ context.Context, id string) error {
	if tpl, ok := r.templates[id]; ok {
		tpl.Views++
	}
	return nil
}

// countingCache tracks cache traffic on top of an in-memory page store.
type countingCache struct {
	pages       map[string]*CachedPage
	hits        int
	sets        int
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{pages: make(map[string]*CachedPage)}
}

func (c *countingCache) Get(_ context.Context, signature string) (*CachedPage, bool) {
	page, ok := c.pages[signature]
	if ok {
		c.hits++
	}
	return page, ok
}

func (c *countingCache) Set(_ context.Context, signature string, page *CachedPage) {
	c.sets++
	c.pages[signature] = page
}

func (c *countingCache) Invalidate(_ context.Context) {
	c.invalidated++
	c.pages = make(map[string]*CachedPage)
}

func newTestService() (*Service, *fakeRepository, *countingCache) {
	repo := newFakeRepository()
	cache := newCountingCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, cache, logger), repo, cache
}

func mustPublish(t *testing.T, service *Service, authorID string, input PublishInput) *Template {
	t.Helper()
	tpl, err := service.Publish(context.Background(), authorID, input)
	require.NoError(t, err)
	return tpl
}

// # Publication

func TestPublish_GeneratesSlugFromTitle(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title:       "My Émail Template!!",
		Description: "Accented title case",
		HTMLContent: "<p>hello</p>",
		IsPublic:    true,
	})

	assert.Equal(t, "my-email-template", tpl.Slug)
	assert.Equal(t, "author-1", tpl.AuthorID)
	assert.EqualValues(t, 0, tpl.Views)
	assert.Equal(t, 0, tpl.LikesCount)
}

func TestPublish_SlugCollisionAppendsSuffix(t *testing.T) {
	service, _, _ := newTestService()

	input := PublishInput{Title: "Welcome Email", Description: "x", HTMLContent: "<p>hi</p>", IsPublic: true}

	first := mustPublish(t, service, "author-1", input)
	second := mustPublish(t, service, "author-2", input)
	third := mustPublish(t, service, "author-3", input)

	assert.Equal(t, "welcome-email", first.Slug)
	assert.Equal(t, "welcome-email-1", second.Slug)
	assert.Equal(t, "welcome-email-2", third.Slug)
}

func TestPublish_TitleWithoutAlphanumericsIsRejected(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Publish(context.Background(), "author-1", PublishInput{
		Title:       "!!! ???",
		Description: "x", HTMLContent: "<p>hi</p>",
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestPublish_MissingFieldsAreListed(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Publish(context.Background(), "author-1", PublishInput{})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	fields := make([]string, 0, len(appErr.Details))
	for _, detail := range appErr.Details {
		fields = append(fields, detail.Field)
	}
	assert.Contains(t, fields, FieldTitle)
	assert.Contains(t, fields, FieldDescription)
	assert.Contains(t, fields, FieldHTMLContent)
}

func TestPublish_NormalizesTags(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title:       "Newsletter Base",
		Description: "x", HTMLContent: "<p>hi</p>",
		Tags:        []string{" HTML ", "html", "Newsletter", "", "  "},
	})

	assert.Equal(t, []string{"html", "newsletter"}, tpl.Tags)
}

func TestPublish_InvalidatesListingCacheForPublicTemplates(t *testing.T) {
	service, _, cache := newTestService()

	mustPublish(t, service, "author-1", PublishInput{
		Title: "Private Draft", Description: "x", HTMLContent: "<p>x</p>", IsPublic: false,
	})
	assert.Equal(t, 0, cache.invalidated)

	mustPublish(t, service, "author-1", PublishInput{
		Title: "Public Launch", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})
	assert.Equal(t, 1, cache.invalidated)
}

// # Update & Delete

func TestUpdate_DoesNotRegenerateSlug(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Original Title", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})
	require.Equal(t, "original-title", tpl.Slug)

	newTitle := "Completely Different Title"
	updated, err := service.Update(context.Background(), "author-1", tpl.ID, UpdateInput{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, "Completely Different Title", updated.Title)
	assert.Equal(t, "original-title", updated.Slug)
}

func TestUpdate_NonAuthorIsForbidden(t *testing.T) {
	service, repo, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Shared Template", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	newTitle := "Hijacked"
	_, err := service.Update(context.Background(), "stranger", tpl.ID, UpdateInput{Title: &newTitle})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	// The template is untouched after the rejected update.
	stored, err := repo.FindByID(context.Background(), tpl.ID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, "Shared Template", stored.Title)
}

func TestUpdate_PrivateTemplateOfOtherAuthorIsNotFound(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Secret Draft", Description: "x", HTMLContent: "<p>x</p>", IsPublic: false,
	})

	newTitle := "Takeover Attempt"
	_, err := service.Update(context.Background(), "stranger", tpl.ID, UpdateInput{Title: &newTitle})

	// Existence of invisible templates is never leaked as Forbidden.
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUpdate_MalformedIDIsNotFound(t *testing.T) {
	service, repo, _ := newTestService()

	newTitle := "Anything"
	_, err := service.Update(context.Background(), "author-1", "not-a-uuid", UpdateInput{Title: &newTitle})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	// The malformed value never reaches the storage layer.
	assert.Equal(t, 0, repo.findByIDCalls)
}

func TestToggleLike_MalformedIDIsNotFound(t *testing.T) {
	service, repo, _ := newTestService()

	_, err := service.ToggleLike(context.Background(), "reader", "55'); DROP TABLE core.template;--")

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, 0, repo.findByIDCalls)
}

func TestDelete_NonAuthorIsForbiddenAndLeavesTemplate(t *testing.T) {
	service, repo, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Keep Me", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	err := service.Delete(context.Background(), "stranger", tpl.ID)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)

	_, err = repo.FindByID(context.Background(), tpl.ID, "author-1")
	assert.NoError(t, err)
}

func TestDelete_ByAuthorRemovesTemplate(t *testing.T) {
	service, repo, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Short Lived", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	require.NoError(t, service.Delete(context.Background(), "author-1", tpl.ID))

	_, err := repo.FindByID(context.Background(), tpl.ID, "author-1")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

// # Visibility

func TestGetBySlug_PrivateIsAuthorOnly(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Private Newsletter", Description: "x", HTMLContent: "<p>x</p>", IsPublic: false,
	})

	// Author sees their own private template.
	got, err := service.GetBySlug(context.Background(), "author-1", tpl.Slug)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, got.ID)

	// Authenticated stranger and anonymous visitor both get NotFound.
	for _, viewer := range []string{"stranger", ""} {
		_, err := service.GetBySlug(context.Background(), viewer, tpl.Slug)
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	}
}

// # Likes

func TestToggleLike_IsAnInvolution(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Likeable", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	first, err := service.ToggleLike(context.Background(), "reader", tpl.ID)
	require.NoError(t, err)
	assert.True(t, first.IsLiked)
	assert.Equal(t, 1, first.LikesCount)

	second, err := service.ToggleLike(context.Background(), "reader", tpl.ID)
	require.NoError(t, err)
	assert.False(t, second.IsLiked)
	assert.Equal(t, 0, second.LikesCount)
}

func TestToggleLike_DifferentUsersAreIndependent(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Popular", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	_, err := service.ToggleLike(context.Background(), "reader-a", tpl.ID)
	require.NoError(t, err)

	result, err := service.ToggleLike(context.Background(), "reader-b", tpl.ID)
	require.NoError(t, err)
	assert.True(t, result.IsLiked)
	assert.Equal(t, 2, result.LikesCount)
}

func TestToggleLike_InvisibleTemplateIsNotFound(t *testing.T) {
	service, _, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Hidden", Description: "x", HTMLContent: "<p>x</p>", IsPublic: false,
	})

	_, err := service.ToggleLike(context.Background(), "stranger", tpl.ID)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

// # Listing & Cache

func TestList_CachesAnonymousPagesOnly(t *testing.T) {
	service, _, cache := newTestService()

	mustPublish(t, service, "author-1", PublishInput{
		Title: "Cached Entry", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})
	cache.invalidated = 0
	cache.pages = make(map[string]*CachedPage)

	// First anonymous read misses and populates the cache.
	items, total, err := service.List(context.Background(), "", Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 0, cache.hits)

	// Second anonymous read is served from the cache.
	_, _, err = service.List(context.Background(), "", Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// Authenticated reads bypass the cache entirely.
	_, _, err = service.List(context.Background(), "author-1", Filter{}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)
}

func TestList_SearchAndTagFiltersAreConjunctive(t *testing.T) {
	service, _, _ := newTestService()

	mustPublish(t, service, "u1", PublishInput{
		Title: "Welcome Email", Description: "x", HTMLContent: "<p>hi</p>",
		Tags: []string{"a"}, IsPublic: true,
	})
	mustPublish(t, service, "u1", PublishInput{
		Title: "Welcome Email", Description: "x", HTMLContent: "<p>hi</p>",
		Tags: []string{"b"}, IsPublic: true,
	})

	// Case-insensitive substring search matches both.
	_, total, err := service.List(context.Background(), "stranger", Filter{Query: "welcome"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// Tag overlap narrows to the first.
	items, total, err := service.List(context.Background(), "stranger", Filter{Tags: []string{"a"}}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "welcome-email", items[0].Slug)
}

func TestList_NeverExposesPrivateTemplates(t *testing.T) {
	service, _, _ := newTestService()

	public := mustPublish(t, service, "author-1", PublishInput{
		Title: "Public One", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})
	mustPublish(t, service, "author-1", PublishInput{
		Title: "Private One", Description: "x", HTMLContent: "<p>x</p>", IsPublic: false,
	})

	// Strangers, anonymous visitors, and the author themselves all get the
	// same public-only catalogue. Drafts live in the personal collection.
	for _, viewer := range []string{"stranger", "", "author-1"} {
		items, total, err := service.List(context.Background(), viewer, Filter{}, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, public.ID, items[0].ID)
	}
}

func TestListByAuthor_IncludesPrivateDrafts(t *testing.T) {
	service, _, _ := newTestService()

	mustPublish(t, service, "author-1", PublishInput{
		Title: "Published", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})
	mustPublish(t, service, "author-1", PublishInput{
		Title: "Draft", Description: "x", HTMLContent: "<p>x</p>", IsPublic: false,
	})
	mustPublish(t, service, "author-2", PublishInput{
		Title: "Someone Else", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	items, total, err := service.ListByAuthor(context.Background(), "author-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, item := range items {
		assert.Equal(t, "author-1", item.AuthorID)
	}
}

// # Views

func TestTrackView_IncrementsCounter(t *testing.T) {
	service, repo, _ := newTestService()

	tpl := mustPublish(t, service, "author-1", PublishInput{
		Title: "Viewed", Description: "x", HTMLContent: "<p>x</p>", IsPublic: true,
	})

	service.TrackView(context.Background(), tpl.ID)
	service.TrackView(context.Background(), tpl.ID)

	stored, err := repo.FindByID(context.Background(), tpl.ID, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.Views)
}
