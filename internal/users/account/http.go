// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
HTTP delivery layer for profile management.

It implements the RESTful interface for users to interact with their account
data and for visitors to view public author profiles.

# Security

The /me endpoints require an active authentication session provided by the
RequireAuth middleware. Public profile discovery is open.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/khanhdoan/mailfold/internal/platform/request"
	"github.com/khanhdoan/mailfold/internal/platform/respond"
	"github.com/khanhdoan/mailfold/internal/platform/validate"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Account Management
	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)

	// Public Profile discovery
	router.Get("/users/{id}", handler.getUserProfile)

	return router
}

// # User Profile Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full profile of the authenticated user,
including author statistics.

Response:
  - 200: Profile: Fully hydrated user profile with stats
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Name            *string `json:"name"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	Website         *string `json:"website"`
	Company         *string `json:"company"`
	GithubUsername  *string `json:"github_username"`
	TwitterUsername *string `json:"twitter_username"`
	LinkedinURL     *string `json:"linkedin_url"`
}

/*
PATCH /api/v1/me.

Description: Applies partial updates to the authenticated user's profile.
Absent fields are left unchanged.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: Profile: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}

	// Only validate the fields actually present in the patch.
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, MaxNameLen)
	}
	if input.Bio != nil {
		validator.MaxLen(FieldBio, *input.Bio, MaxBioLen)
	}
	if input.Location != nil {
		validator.MaxLen(FieldLocation, *input.Location, MaxShortField)
	}
	if input.Website != nil {
		validator.MaxLen(FieldWebsite, *input.Website, MaxURLFieldLen).
			URL(FieldWebsite, *input.Website)
	}
	if input.Company != nil {
		validator.MaxLen(FieldCompany, *input.Company, MaxShortField)
	}
	if input.GithubUsername != nil {
		validator.MaxLen(FieldGithubUsername, *input.GithubUsername, MaxShortField)
	}
	if input.TwitterUsername != nil {
		validator.MaxLen(FieldTwitterUsername, *input.TwitterUsername, MaxShortField)
	}
	if input.LinkedinURL != nil {
		validator.MaxLen(FieldLinkedinURL, *input.LinkedinURL, MaxURLFieldLen).
			URL(FieldLinkedinURL, *input.LinkedinURL)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Name:            input.Name,
		Bio:             input.Bio,
		Location:        input.Location,
		Website:         input.Website,
		Company:         input.Company,
		GithubUsername:  input.GithubUsername,
		TwitterUsername: input.TwitterUsername,
		LinkedinURL:     input.LinkedinURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// publicProfileView is the safety-mapped public projection of a profile.
// It omits the email and provider details of the account.
type publicProfileView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	Bio             string `json:"bio,omitempty"`
	Location        string `json:"location,omitempty"`
	Website         string `json:"website,omitempty"`
	Company         string `json:"company,omitempty"`
	GithubUsername  string `json:"github_username,omitempty"`
	TwitterUsername string `json:"twitter_username,omitempty"`
	LinkedinURL     string `json:"linkedin_url,omitempty"`
	Stats           Stats  `json:"stats"`
}

/*
GET /api/v1/users/{id}.

Description: Retrieves the public author profile for any user.

Response:
  - 200: publicProfileView: Public identity with author stats
  - 404: ErrNotFound: Unknown user
*/
func (handler *Handler) getUserProfile(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, publicProfileView{
		ID:              profile.User.ID,
		Name:            profile.User.Name,
		AvatarURL:       profile.User.AvatarURL,
		Bio:             profile.User.Bio,
		Location:        profile.User.Location,
		Website:         profile.User.Website,
		Company:         profile.User.Company,
		GithubUsername:  profile.User.GithubUsername,
		TwitterUsername: profile.User.TwitterUsername,
		LinkedinURL:     profile.User.LinkedinURL,
		Stats:           profile.Stats,
	})
}
