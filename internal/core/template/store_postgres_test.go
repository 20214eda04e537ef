// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The viewer argument is a string that is empty for anonymous requests. It may
// only ever appear in SQL wrapped in the NULLIF guard; binding "" straight
// into a uuid comparison fails to encode and turns every anonymous read into
// a server error.

func TestViewerParam_TurnsEmptyViewerIntoNull(t *testing.T) {
	assert.Equal(t, "NULLIF($2, '')::uuid", viewerParam(2))
}

func TestSelectColumns_GuardsViewerPlaceholder(t *testing.T) {
	projection := selectColumns(1)

	assert.Contains(t, projection, "NULLIF($1, '')::uuid")
	assert.False(t, strings.Contains(projection, "= $1"),
		"viewer placeholder must not be compared to a uuid column directly")
}
