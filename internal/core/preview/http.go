// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package preview

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/khanhdoan/mailfold/internal/platform/request"
	"github.com/khanhdoan/mailfold/internal/platform/respond"
	"github.com/khanhdoan/mailfold/internal/platform/validate"
)

// Handler implements the HTTP layer for preview rendering.
type Handler struct{}

// NewHandler constructs a new preview [Handler].
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns a [chi.Router] with the preview endpoint.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.render)
	return router
}

// previewRequest defines the expected JSON payload for preview rendering.
type previewRequest struct {
	HTMLContent string  `json:"html_content"`
	Options     Options `json:"options"`
}

/*
POST /api/v1/preview.

Description: Sanitizes and renders template HTML into an iframe-ready data
URL. Stateless and unauthenticated; nothing is persisted.

Request:
  - body: previewRequest

Response:
  - 200: {data_url}
  - 400: ErrInvalidJSON/Validation: Missing content
*/
func (handler *Handler) render(writer http.ResponseWriter, request *http.Request) {
	var input previewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("html_content", input.HTMLContent)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"data_url": DataURL(input.HTMLContent, input.Options),
	})
}
