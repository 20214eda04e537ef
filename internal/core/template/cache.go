// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package template

import "context"

// # Listing Cache

// CachedPage is the serializable snapshot of one catalogue listing page.
type CachedPage struct {
	Items []*Template `json:"items"`
	Total int         `json:"total"`
}

// ListingCache defines the contract for caching anonymous catalogue pages.
//
// Only anonymous listings are cached: authenticated reads carry per-viewer
// is_liked state that must never be shared between users.
//
// # Failure Semantics
//
// The cache is an optimization, never a source of truth. Implementations
// report misses instead of errors wherever possible, and callers fall back to
// the repository on any miss.
type ListingCache interface {

	/*
		Get returns the cached page for a listing signature, if present.

		Parameters:
		  - context: context.Context
		  - signature: string (Deterministic encoding of filter + pagination)

		Returns:
		  - *CachedPage: The cached snapshot, or nil on a miss
		  - bool: true on a hit
	*/
	Get(context context.Context, signature string) (*CachedPage, bool)

	/*
		Set stores a page snapshot under a listing signature.

		Parameters:
		  - context: context.Context
		  - signature: string
		  - page: *CachedPage
	*/
	Set(context context.Context, signature string, page *CachedPage)

	/*
		Invalidate drops every cached page at once.

		Description: Implementations use generation bumping rather than key
		scanning, so invalidation is O(1) regardless of how many pages exist.

		Parameters:
		  - context: context.Context
	*/
	Invalidate(context context.Context)
}

// NoopListingCache is a [ListingCache] that never hits.
// Used in tests and in deployments running without Redis.
type NoopListingCache struct{}

// Get always reports a miss.
func (NoopListingCache) Get(context.Context, string) (*CachedPage, bool) { return nil, false }

// Set discards the page.
func (NoopListingCache) Set(context.Context, string, *CachedPage) {}

// Invalidate does nothing.
func (NoopListingCache) Invalidate(context.Context) {}
