// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
HTTP delivery layer for the template catalogue.

It implements the RESTful interface for publishing, browsing, updating, and
liking email templates.

# Security

Browsing endpoints are open to anonymous visitors; they simply see fewer rows
(public templates only) and no per-viewer like state. Publication and every
mutation require an authenticated session.
*/
package template

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/khanhdoan/mailfold/internal/platform/request"
	"github.com/khanhdoan/mailfold/internal/platform/respond"
	"github.com/khanhdoan/mailfold/pkg/pagination"
	"github.com/khanhdoan/mailfold/pkg/query"
)

// Handler implements the HTTP layer for the template catalogue.
type Handler struct {
	templateService *Service
}

// NewHandler constructs a new template [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{templateService: service}
}

// Routes returns a [chi.Router] configured with the catalogue endpoints.
// It is intended to be mounted under /templates.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Catalogue browsing
	router.Get("/", handler.list)
	router.Get("/{slug}", handler.getBySlug)

	// Personal collections (static segments win over the slug parameter)
	router.Get("/mine", handler.listMine)
	router.Get("/liked", handler.listLiked)

	// Publication and lifecycle
	router.Post("/", handler.publish)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	// Engagement
	router.Post("/{id}/like", handler.toggleLike)
	router.Post("/{id}/view", handler.trackView)

	return router
}

// viewerID resolves the requesting user's ID, or "" for anonymous visitors.
func viewerID(request *http.Request) string {
	claims := requestutil.Claims(request)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// # Browsing Endpoints

/*
GET /api/v1/templates.

Description: Lists the catalogue with optional filtering and sorting. When a
"slug" query parameter is present the endpoint degenerates into a single-item
lookup and answers with that template or 404.

Request:
  - query search: Free-text search over title and description
  - query tags: Comma-separated tag filter (overlap match)
  - query author: Filter by author ID (their public templates only)
  - query sort: One of "latest" (default), "popular", "likes"
  - query slug: Exact-slug lookup, bypasses all other filters
  - query page, limit: Pagination

Response:
  - 200: []Template + pagination metadata (or single Template for slug lookups)
  - 404: ErrNotFound: Slug lookup missed
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	values := request.URL.Query()

	// Exact-slug lookup short-circuits the listing machinery.
	if slug := values.Get("slug"); slug != "" {
		tpl, err := handler.templateService.GetBySlug(request.Context(), viewerID(request), slug)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, tpl)
		return
	}

	params := pagination.FromRequest(request)

	filter := Filter{
		Query:    values.Get("search"),
		Tags:     query.StringSlice(values.Get("tags")),
		AuthorID: values.Get("author"),
		Sort:     values.Get("sort"),
	}

	items, total, err := handler.templateService.List(request.Context(), viewerID(request), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/templates/{slug}.

Description: Retrieves a single template by slug. Private templates answer 404
to everyone except their author.

Response:
  - 200: Template: Full entity including HTML content
  - 404: ErrNotFound: Unknown or invisible slug
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	slug := requestutil.Param(request, "slug")

	tpl, err := handler.templateService.GetBySlug(request.Context(), viewerID(request), slug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tpl)
}

// # Publication Endpoints

// publishRequest defines the expected JSON payload for template publication.
type publishRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	HTMLContent string   `json:"html_content"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags"`
}

/*
POST /api/v1/templates.

Description: Publishes a new template under the authenticated user. The URL
slug is derived from the title server-side.

Request:
  - body: publishRequest

Response:
  - 201: {id, slug, message}
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input publishRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tpl, err := handler.templateService.Publish(request.Context(), userID, PublishInput{
		Title:       input.Title,
		Description: input.Description,
		HTMLContent: input.HTMLContent,
		IsPublic:    input.IsPublic,
		Tags:        input.Tags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldID:      tpl.ID,
		FieldSlug:    tpl.Slug,
		FieldMessage: "Template published successfully",
	})
}

// updateRequest defines the expected JSON payload for template updates.
// Absent fields are left unchanged; the slug never changes.
type updateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	HTMLContent *string  `json:"html_content"`
	IsPublic    *bool    `json:"is_public"`
	Tags        []string `json:"tags"`
}

/*
PATCH /api/v1/templates/{id}.

Description: Applies partial updates to a template owned by the authenticated
user.

Request:
  - body: updateRequest (Partial JSON)

Response:
  - 200: Template: The updated entity
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Viewer is not the author
  - 404: ErrNotFound: Unknown or invisible template
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tpl, err := handler.templateService.Update(request.Context(), userID, requestutil.Param(request, "id"), UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		HTMLContent: input.HTMLContent,
		IsPublic:    input.IsPublic,
		Tags:        input.Tags,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tpl)
}

/*
DELETE /api/v1/templates/{id}.

Description: Permanently removes a template owned by the authenticated user.

Response:
  - 204: Deleted
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Viewer is not the author
  - 404: ErrNotFound: Unknown or invisible template
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.templateService.Delete(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Engagement Endpoints

/*
POST /api/v1/templates/{id}/like.

Description: Toggles the authenticated user's like on a template. The response
carries the post-toggle state and the fresh count, computed atomically with
the toggle.

Response:
  - 200: {is_liked, likes_count, message}
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: Unknown or invisible template
*/
func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.templateService.ToggleLike(request.Context(), userID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := "Like removed"
	if result.IsLiked {
		message = "Template liked"
	}

	respond.OK(writer, map[string]any{
		FieldIsLiked:    result.IsLiked,
		FieldLikesCount: result.LikesCount,
		FieldMessage:    message,
	})
}

/*
POST /api/v1/templates/{id}/view.

Description: Records a display of the template. Fire-and-forget: the endpoint
always answers 204, even for unknown IDs, so clients never retry it.

Response:
  - 204: Recorded (or silently dropped)
*/
func (handler *Handler) trackView(writer http.ResponseWriter, request *http.Request) {
	handler.templateService.TrackView(request.Context(), requestutil.Param(request, "id"))
	respond.NoContent(writer)
}

// # Personal Collection Endpoints

/*
GET /api/v1/templates/mine.

Description: Lists every template of the authenticated user, private ones
included.

Response:
  - 200: []Template + pagination metadata
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	items, total, err := handler.templateService.ListByAuthor(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/templates/liked.

Description: Lists the templates the authenticated user has liked, most
recently liked first.

Response:
  - 200: []Template + pagination metadata
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listLiked(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	items, total, err := handler.templateService.ListLikedBy(request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}
