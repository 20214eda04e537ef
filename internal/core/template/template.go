// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
Package template defines the core domain entities for the Mailfold catalogue.

It manages the lifecycle of published HTML email templates including metadata,
visibility, discovery tags, and engagement metrics.

Core Responsibility:

  - Catalogue: Defines the Template aggregate and its public/private visibility.
  - Discovery: Manages free-form tags and slug-based addressing.
  - Engagement: Tracks likes and view counts for ranking.

This package acts as the source of truth for all content-related data models.
*/
package template

import "time"

// # Core Entities

// Template is the central aggregate of the Mailfold domain.
// It represents a single published HTML email template in the catalogue.
type Template struct {
	ID          string   `json:"id"`
	AuthorID    string   `json:"author_id"`
	AuthorName  string   `json:"author_name,omitempty"` // Denormalized via JOIN for display
	Title       string   `json:"title"`
	Slug        string   `json:"slug"` // URL-safe identifier, unique across the catalogue
	Description string   `json:"description,omitempty"`
	HTMLContent string   `json:"html_content"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags,omitempty"`

	// # Computed Metrics
	// LikesCount and IsLiked are derived from the like relation at query time
	// and are never stored on the template row.
	Views      int64 `json:"views"`
	LikesCount int   `json:"likes_count"`
	IsLiked    bool  `json:"is_liked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeResult reports the outcome of a like toggle.
type LikeResult struct {
	IsLiked    bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

// # Search & Filtering

// Filter holds the parameters for a filtered template list query.
//
// Visibility is not part of the filter: repositories always restrict rows to
// those visible to the provided viewer (public, or owned by the viewer).
type Filter struct {
	Query    string   `json:"q,omitempty"`    // Case-insensitive match on title and description
	Tags     []string `json:"tags,omitempty"` // Overlap match: any shared tag qualifies
	AuthorID string   `json:"author_id,omitempty"`
	Sort     string   `json:"sort,omitempty"` // latest (default), popular, likes
}

// # Domain Constraints

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 500
	MaxTags           = 10
	MaxTagLen         = 30
)

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldHTMLContent = "html_content"
	FieldIsPublic    = "is_public"
	FieldTags        = "tags"
	FieldIsLiked     = "is_liked"
	FieldLikesCount  = "likes_count"
	FieldMessage     = "message"
)
