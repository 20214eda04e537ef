// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhdoan/mailfold/pkg/slug"
)

/*
TestFrom verifies the normalization pipeline over representative titles.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Welcome Email", "welcome-email"},
		{"punctuation", "My Email!!", "my-email"},
		{"accents", "Résumé Café", "resume-cafe"},
		{"whitespace_runs", "Black   Friday \t Sale", "black-friday-sale"},
		{"leading_trailing", "  --Promo--  ", "promo"},
		{"mixed_case_digits", "Q4 2025 Newsletter", "q4-2025-newsletter"},
		{"no_alphanumerics", "!!! ???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Deterministic verifies repeated calls yield identical output.
*/
func TestFrom_Deterministic(t *testing.T) {
	first := slug.From("My Email!!")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, slug.From("My Email!!"))
	}
	assert.Equal(t, "my-email", first)
}

/*
TestUnique verifies the incrementing-suffix collision policy.
*/
func TestUnique(t *testing.T) {
	t.Run("free_base_returned_unchanged", func(t *testing.T) {
		existing := map[string]bool{}
		got, err := slug.Unique("welcome-email", mapExists(existing))
		require.NoError(t, err)
		assert.Equal(t, "welcome-email", got)
	})

	t.Run("single_collision", func(t *testing.T) {
		existing := map[string]bool{"welcome-email": true}
		got, err := slug.Unique("welcome-email", mapExists(existing))
		require.NoError(t, err)
		assert.Equal(t, "welcome-email-1", got)
	})

	t.Run("dense_collisions", func(t *testing.T) {
		existing := map[string]bool{
			"welcome-email":   true,
			"welcome-email-1": true,
			"welcome-email-2": true,
		}
		got, err := slug.Unique("welcome-email", mapExists(existing))
		require.NoError(t, err)
		assert.Equal(t, "welcome-email-3", got)
	})

	t.Run("gap_is_reused", func(t *testing.T) {
		// The policy probes sequentially, so the first free suffix wins.
		existing := map[string]bool{
			"welcome-email":   true,
			"welcome-email-2": true,
		}
		got, err := slug.Unique("welcome-email", mapExists(existing))
		require.NoError(t, err)
		assert.Equal(t, "welcome-email-1", got)
	})
}

/*
TestUnique_SequencesAreDistinct simulates a sequence of publishes with the
same title: every assigned slug must be distinct.
*/
func TestUnique_SequencesAreDistinct(t *testing.T) {
	existing := map[string]bool{}
	seen := map[string]bool{}

	for i := 0; i < 25; i++ {
		got, err := slug.Unique("welcome-email", mapExists(existing))
		require.NoError(t, err)
		assert.False(t, seen[got], "slug %q assigned twice", got)
		seen[got] = true
		existing[got] = true
	}
}

// mapExists adapts an in-memory set to a [slug.ExistsFunc].
func mapExists(existing map[string]bool) slug.ExistsFunc {
	return func(candidate string) (bool, error) {
		return existing[candidate], nil
	}
}
