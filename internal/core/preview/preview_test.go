// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

package preview

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// # Sanitization

func TestSanitize_RemovesActiveContent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		absent  []string
		present []string
	}{
		{
			name:    "script blocks",
			input:   `<p>hi</p><script>alert("xss")</script><p>bye</p>`,
			absent:  []string{"<script", "alert"},
			present: []string{"<p>hi</p>", "<p>bye</p>"},
		},
		{
			name:    "script blocks with attributes and mixed case",
			input:   `<SCRIPT type="text/javascript">steal()</SCRIPT>`,
			absent:  []string{"steal", "SCRIPT"},
			present: nil,
		},
		{
			name:    "inline event handlers double quoted",
			input:   `<img src="logo.png" onerror="alert(1)">`,
			absent:  []string{"onerror", "alert"},
			present: []string{`src="logo.png"`},
		},
		{
			name:    "inline event handlers single quoted",
			input:   `<div onclick='doEvil()'>content</div>`,
			absent:  []string{"onclick", "doEvil"},
			present: []string{"content"},
		},
		{
			name:    "javascript urls",
			input:   `<a href="javascript:alert(1)">click</a>`,
			absent:  []string{"javascript:"},
			present: []string{"<a href=", "click"},
		},
		{
			name:    "legacy email markup passes through",
			input:   `<table width="600"><tr><td bgcolor="#ffffff">Offer</td></tr></table>`,
			absent:  nil,
			present: []string{`<table width="600">`, `bgcolor="#ffffff"`, "Offer"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Sanitize(test.input)
			for _, fragment := range test.absent {
				assert.NotContains(t, got, fragment)
			}
			for _, fragment := range test.present {
				assert.Contains(t, got, fragment)
			}
		})
	}
}

// # Rendering

func TestRender_AppliesDefaults(t *testing.T) {
	doc := Render("<p>hello</p>", Options{})

	assert.Contains(t, doc, "background: #ffffff")
	assert.Contains(t, doc, "transform: scale(0.6)")
	assert.Contains(t, doc, "max-width: 600px")
	// Inverse stretch of the 0.6 scale.
	assert.Contains(t, doc, "width: 167%")
	assert.Contains(t, doc, "pointer-events: none")
	assert.Contains(t, doc, "<p>hello</p>")
}

func TestRender_HonorsCustomOptions(t *testing.T) {
	doc := Render("<p>x</p>", Options{Width: 800, Scale: 0.5, Background: "#f0f0f0"})

	assert.Contains(t, doc, "background: #f0f0f0")
	assert.Contains(t, doc, "transform: scale(0.5)")
	assert.Contains(t, doc, "max-width: 800px")
	assert.Contains(t, doc, "width: 200%")
}

func TestRender_SanitizesContent(t *testing.T) {
	doc := Render(`<p>ok</p><script>alert(1)</script>`, Options{})

	assert.NotContains(t, doc, "alert")
	assert.Contains(t, doc, "<p>ok</p>")
}

// # Data URLs

func TestDataURL_RoundTripsThroughPercentEncoding(t *testing.T) {
	dataURL := DataURL("<p>héllo & welcome</p>", Options{})

	require.True(t, strings.HasPrefix(dataURL, "data:text/html;charset=utf-8,"))

	encoded := strings.TrimPrefix(dataURL, "data:text/html;charset=utf-8,")
	decoded, err := url.PathUnescape(encoded)
	require.NoError(t, err)

	assert.Contains(t, decoded, "<p>héllo & welcome</p>")
	assert.Contains(t, decoded, "<!DOCTYPE html>")
}
