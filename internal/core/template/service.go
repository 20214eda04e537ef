// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/khanhdoan/mailfold/internal/platform/apperr"
	"github.com/khanhdoan/mailfold/internal/platform/validate"
	"github.com/khanhdoan/mailfold/pkg/slice"
	"github.com/khanhdoan/mailfold/pkg/slug"
	"github.com/khanhdoan/mailfold/pkg/uuid"
)

// # Service Layer

// Service orchestrates the template catalogue use cases.
//
// It enforces the visibility model (public vs private), ownership rules for
// mutations, and keeps the anonymous listing cache coherent.
type Service struct {
	repository Repository
	cache      ListingCache
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, cache ListingCache, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		logger:     logger,
	}
}

// # Publication Flow

// PublishInput holds the data required to publish a new template.
type PublishInput struct {
	Title       string
	Description string
	HTMLContent string
	IsPublic    bool
	Tags        []string
}

/*
Publish validates and persists a brand new template.

Description: The URL slug is derived from the title; on collision a numeric
suffix is appended until a free slug is found, so two authors publishing
"Welcome Email" end up with "welcome-email" and "welcome-email-1".

Parameters:
  - context: context.Context
  - authorID: string
  - input: PublishInput

Returns:
  - *Template: Created entity
  - err: ValidationError or storage errors
*/
func (service *Service) Publish(context context.Context, authorID string, input PublishInput) (*Template, error) {

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	tags := normalizeTags(input.Tags)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, MaxTitleLen).
		Required(FieldDescription, input.Description).
		MaxLen(FieldDescription, input.Description, MaxDescriptionLen).
		Required(FieldHTMLContent, input.HTMLContent).
		Custom(FieldTags, len(tags) > MaxTags, fmt.Sprintf("Maximum %d tags", MaxTags))
	for _, tag := range tags {
		validator.MaxLen(FieldTags, tag, MaxTagLen)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Derive the slug base from the title. A title with no usable characters
	// (e.g. all punctuation) cannot be addressed and is rejected.
	base := slug.From(input.Title)
	if base == "" {
		return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldTitle,
			Message: "Title must contain at least one letter or digit",
		})
	}

	uniqueSlug, err := slug.Unique(base, func(candidate string) (bool, error) {
		return service.repository.SlugExists(context, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("template_service_slug_failed: %w", err)
	}

	now := time.Now()
	tpl := &Template{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       input.Title,
		Slug:        uniqueSlug,
		Description: input.Description,
		HTMLContent: input.HTMLContent,
		IsPublic:    input.IsPublic,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.repository.Create(context, tpl); err != nil {
		return nil, fmt.Errorf("template_service_publish_failed: %w", err)
	}

	// A new public template changes the anonymous catalogue.
	if tpl.IsPublic {
		service.cache.Invalidate(context)
	}

	service.logger.Info("template_published",
		slog.String("template_id", tpl.ID),
		slog.String("slug", tpl.Slug),
	)

	return tpl, nil
}

// UpdateInput defines the mutable subset of template fields.
// Nil pointers mean "leave unchanged". The slug never changes after publication.
type UpdateInput struct {
	Title       *string
	Description *string
	HTMLContent *string
	IsPublic    *bool
	Tags        []string
}

/*
Update applies a partial set of changes to a template.

Description: Only the author may update. The slug is immutable: renaming the
title does not re-slug, so existing links keep working.

Parameters:
  - context: context.Context
  - viewerID: string
  - templateID: string
  - input: UpdateInput

Returns:
  - *Template: The updated entity
  - err: NotFound, Forbidden, ValidationError, or storage errors
*/
func (service *Service) Update(context context.Context, viewerID, templateID string, input UpdateInput) (*Template, error) {

	// A malformed ID cannot address any template.
	if !validate.IsUUID(templateID) {
		return nil, apperr.NotFound("Template")
	}

	// Visibility-checked fetch: a private template of another author answers
	// NotFound here, never Forbidden, so its existence is not leaked.
	tpl, err := service.repository.FindByID(context, templateID, viewerID)
	if err != nil {
		return nil, err
	}

	// Ownership check on a template the viewer can see.
	if tpl.AuthorID != viewerID {
		return nil, apperr.Forbidden("Only the author can update this template")
	}

	wasPublic := tpl.IsPublic

	// Overlay only the fields the caller provided.
	if input.Title != nil {
		tpl.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		tpl.Description = strings.TrimSpace(*input.Description)
	}
	if input.HTMLContent != nil {
		tpl.HTMLContent = *input.HTMLContent
	}
	if input.IsPublic != nil {
		tpl.IsPublic = *input.IsPublic
	}
	if input.Tags != nil {
		tpl.Tags = normalizeTags(input.Tags)
	}

	validator := &validate.Validator{}
	validator.Required(FieldTitle, tpl.Title).
		MaxLen(FieldTitle, tpl.Title, MaxTitleLen).
		Required(FieldDescription, tpl.Description).
		MaxLen(FieldDescription, tpl.Description, MaxDescriptionLen).
		Required(FieldHTMLContent, tpl.HTMLContent).
		Custom(FieldTags, len(tpl.Tags) > MaxTags, fmt.Sprintf("Maximum %d tags", MaxTags))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	tpl.UpdatedAt = time.Now()
	if err := service.repository.Update(context, tpl); err != nil {
		return nil, fmt.Errorf("template_service_update_failed: %w", err)
	}

	// The anonymous catalogue changes if the template is or was public.
	if tpl.IsPublic || wasPublic {
		service.cache.Invalidate(context)
	}

	service.logger.Info("template_updated", slog.String("template_id", tpl.ID))

	return tpl, nil
}

/*
Delete permanently removes a template.

Description: Only the author may delete. Like relations cascade away with the
row.

Parameters:
  - context: context.Context
  - viewerID: string
  - templateID: string

Returns:
  - err: NotFound, Forbidden, or storage errors
*/
func (service *Service) Delete(context context.Context, viewerID, templateID string) error {

	if !validate.IsUUID(templateID) {
		return apperr.NotFound("Template")
	}

	tpl, err := service.repository.FindByID(context, templateID, viewerID)
	if err != nil {
		return err
	}

	if tpl.AuthorID != viewerID {
		return apperr.Forbidden("Only the author can delete this template")
	}

	if err := service.repository.Delete(context, templateID); err != nil {
		return fmt.Errorf("template_service_delete_failed: %w", err)
	}

	if tpl.IsPublic {
		service.cache.Invalidate(context)
	}

	service.logger.Info("template_deleted", slog.String("template_id", templateID))

	return nil
}

// # Discovery Flow

/*
GetBySlug retrieves a single template by its slug.

Description: Private templates are only visible to their author; everyone else
gets NotFound. Views are not recorded here but through [Service.TrackView],
which clients call separately when the template is actually displayed.

Parameters:
  - context: context.Context
  - viewerID: string (empty for anonymous)
  - slugValue: string

Returns:
  - *Template: Hydrated entity with computed metrics
  - err: NotFound or storage errors
*/
func (service *Service) GetBySlug(context context.Context, viewerID, slugValue string) (*Template, error) {
	return service.repository.FindBySlug(context, slugValue, viewerID)
}

/*
TrackView records a single display of a template.

Description: The counter bump is a single atomic update; failures are logged
and swallowed so view tracking can never break a page load.

Parameters:
  - context: context.Context
  - templateID: string
*/
func (service *Service) TrackView(context context.Context, templateID string) {
	if !validate.IsUUID(templateID) {
		return
	}
	if err := service.repository.IncrementViews(context, templateID); err != nil {
		service.logger.Warn("template_view_track_failed",
			slog.String("template_id", templateID),
			slog.Any("error", err),
		)
	}
}

/*
List returns a filtered, paginated page of the catalogue.

Description: The catalogue only ever contains public templates; the owner's
private drafts are served through [Service.ListByAuthor]. Anonymous requests
are served from the listing cache when possible. Authenticated requests always
hit the repository, because their results carry per-viewer is_liked state.

Parameters:
  - context: context.Context
  - viewerID: string (empty for anonymous)
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Template: Page items
  - int: Total count matching filters
  - err: Storage errors
*/
func (service *Service) List(context context.Context, viewerID string, filter Filter, limit, offset int) ([]*Template, int, error) {

	// A malformed author filter cannot match any row.
	if filter.AuthorID != "" && !validate.IsUUID(filter.AuthorID) {
		return nil, 0, nil
	}

	cacheable := viewerID == ""
	signature := listSignature(filter, limit, offset)

	if cacheable {
		if page, ok := service.cache.Get(context, signature); ok {
			return page.Items, page.Total, nil
		}
	}

	items, total, err := service.repository.List(context, filter, viewerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("template_service_list_failed: %w", err)
	}

	if cacheable {
		service.cache.Set(context, signature, &CachedPage{Items: items, Total: total})
	}

	return items, total, nil
}

/*
ListByAuthor returns an author's own templates, private drafts included.

Description: This backs the personal "my templates" collection, so it bypasses
the public-only catalogue restriction. Handlers must pass the authenticated
user's own ID; browsing someone else's work goes through [Service.List] with
an author filter, which only yields their public templates.

Parameters:
  - context: context.Context
  - authorID: string
  - limit: int
  - offset: int

Returns:
  - []*Template: Page items, newest first
  - int: Total count
  - err: Storage errors
*/
func (service *Service) ListByAuthor(context context.Context, authorID string, limit, offset int) ([]*Template, int, error) {
	items, total, err := service.repository.ListByAuthor(context, authorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("template_service_list_by_author_failed: %w", err)
	}
	return items, total, nil
}

/*
ListLikedBy returns the templates the authenticated user has liked.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int
  - offset: int

Returns:
  - []*Template: Page items, newest like first
  - int: Total count
  - err: Storage errors
*/
func (service *Service) ListLikedBy(context context.Context, userID string, limit, offset int) ([]*Template, int, error) {
	items, total, err := service.repository.ListLikedBy(context, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("template_service_list_liked_failed: %w", err)
	}
	return items, total, nil
}

// # Engagement Flow

/*
ToggleLike flips the user's like on a template.

Description: The toggle and the resulting count are computed in one storage
transaction, so the reported count always matches the reported state. Liking
a template you cannot see answers NotFound.

Parameters:
  - context: context.Context
  - userID: string
  - templateID: string

Returns:
  - LikeResult: Post-toggle membership and count
  - err: NotFound or storage errors
*/
func (service *Service) ToggleLike(context context.Context, userID, templateID string) (LikeResult, error) {

	if !validate.IsUUID(templateID) {
		return LikeResult{}, apperr.NotFound("Template")
	}

	// Visibility gate before touching the relation.
	if _, err := service.repository.FindByID(context, templateID, userID); err != nil {
		return LikeResult{}, err
	}

	result, err := service.repository.ToggleLike(context, templateID, userID)
	if err != nil {
		return LikeResult{}, fmt.Errorf("template_service_toggle_like_failed: %w", err)
	}

	// Cached anonymous pages carry like counts.
	service.cache.Invalidate(context)

	return result, nil
}

// # Helpers

// normalizeTags lowercases, trims, drops empties, and deduplicates tags.
func normalizeTags(tags []string) []string {
	cleaned := slice.Map(tags, func(tag string) string {
		return strings.ToLower(strings.TrimSpace(tag))
	})
	cleaned = slice.Filter(cleaned, func(tag string) bool { return tag != "" })
	return slice.Unique(cleaned)
}

// listSignature deterministically encodes a listing request for cache keying.
func listSignature(filter Filter, limit, offset int) string {
	return fmt.Sprintf("q=%s&tags=%s&author=%s&sort=%s&limit=%d&offset=%d",
		filter.Query,
		strings.Join(filter.Tags, ","),
		filter.AuthorID,
		filter.Sort,
		limit,
		offset,
	)
}
