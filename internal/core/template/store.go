// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package template

import "context"

// # Catalogue Data Access

// Repository defines the data access contract for the template catalogue.
//
// Single-row reads take a viewerID and only return rows visible to that viewer
// (public templates, plus the viewer's own private ones). The general listing
// is stricter and serves public rows only; private drafts are reachable solely
// through ListByAuthor. An empty viewerID means an anonymous request.
type Repository interface {

	/*
		Create persists a brand-new template to the storage.

		Parameters:
		  - context: context.Context
		  - tpl: *Template

		Returns:
		  - error: Persistence failures (Conflict on slug collision)
	*/
	Create(context context.Context, tpl *Template) error

	/*
		FindByID returns the template with the given ID, if visible to the viewer.

		Parameters:
		  - context: context.Context
		  - id: string
		  - viewerID: string

		Returns:
		  - *Template: Hydrated entity with computed metrics
		  - error: apperr.NotFound (also for invisible rows) or storage failures
	*/
	FindByID(context context.Context, id, viewerID string) (*Template, error)

	/*
		FindBySlug returns the template with the given slug, if visible to the viewer.

		Parameters:
		  - context: context.Context
		  - slug: string
		  - viewerID: string

		Returns:
		  - *Template: Hydrated entity with computed metrics
		  - error: apperr.NotFound (also for invisible rows) or storage failures
	*/
	FindBySlug(context context.Context, slug, viewerID string) (*Template, error)

	/*
		List returns a filtered, paginated slice of public templates and the total count.

		The general catalogue never contains private drafts, regardless of the
		viewer. The viewerID only feeds the per-viewer is_liked metric.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - viewerID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Template: Slice of hydrated entities
		  - int: Total count matching filters
		  - error: Database execution errors
	*/
	List(context context.Context, filter Filter, viewerID string, limit, offset int) ([]*Template, int, error)

	/*
		ListByAuthor returns every template of an author, private drafts included.
		Callers must restrict this to the owner's own collection.

		Parameters:
		  - context: context.Context
		  - authorID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Template: Slice of hydrated entities, newest first
		  - int: Total count
		  - error: Database execution errors
	*/
	ListByAuthor(context context.Context, authorID string, limit, offset int) ([]*Template, int, error)

	/*
		ListLikedBy returns the visible templates a user has liked, newest like first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int
		  - offset: int

		Returns:
		  - []*Template: Slice of hydrated entities
		  - int: Total count
		  - error: Database execution errors
	*/
	ListLikedBy(context context.Context, userID string, limit, offset int) ([]*Template, int, error)

	/*
		Update persists changes to a template's mutable fields.

		Parameters:
		  - context: context.Context
		  - tpl: *Template

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, tpl *Template) error

	/*
		Delete permanently removes a template and its like relations.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(context context.Context, id string) error

	/*
		SlugExists reports whether a slug is already taken.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - bool: true if a template with this slug exists
		  - error: Retrieval failures
	*/
	SlugExists(context context.Context, slug string) (bool, error)

	/*
		ToggleLike atomically flips the user's like on a template and returns
		the resulting state together with the fresh like count.

		Parameters:
		  - context: context.Context
		  - templateID: string
		  - userID: string

		Returns:
		  - LikeResult: Post-toggle membership and count
		  - error: Transaction failures
	*/
	ToggleLike(context context.Context, templateID, userID string) (LikeResult, error)

	/*
		IncrementViews bumps the view counter by one with a single atomic update.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	IncrementViews(context context.Context, id string) error
}
