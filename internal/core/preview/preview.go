// Copyright (c) 2026 Mailfold. All rights reserved.
// Author: khanh.dm.dev@gmail.com

/*
Package preview renders embeddable previews of HTML email templates.

It is fully stateless: input HTML is sanitized, wrapped in a scaled standalone
document, and returned as a data: URL that clients drop into an iframe src.
No image rendering or headless browser is involved.

# Security

Sanitization is the whole point of the server-side variant. Script blocks,
inline event handlers, and javascript: URLs are stripped before the content is
wrapped, and the wrapper disables pointer events so links inside the preview
stay inert.
*/
package preview

import (
	"fmt"
	"net/url"
	"regexp"
)

// # Render Defaults

const (
	DefaultWidth      = 600
	DefaultHeight     = 400
	DefaultScale      = 0.6
	DefaultBackground = "#ffffff"
)

var (
	// scriptBlocks matches whole <script>...</script> elements, any casing.
	scriptBlocks = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	// jsProtocol matches the javascript: URL scheme.
	jsProtocol = regexp.MustCompile(`(?i)javascript:`)
	// eventHandlers matches inline on*= handler attributes in either quote style.
	eventHandlers = regexp.MustCompile(`(?i)on\w+\s*=\s*("[^"]*"|'[^']*')`)
)

// Options controls the preview document geometry.
// Zero values fall back to the package defaults.
type Options struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Scale      float64 `json:"scale"`
	Background string  `json:"background"`
}

// withDefaults fills unset fields with the package defaults.
func (options Options) withDefaults() Options {
	if options.Width <= 0 {
		options.Width = DefaultWidth
	}
	if options.Height <= 0 {
		options.Height = DefaultHeight
	}
	if options.Scale <= 0 {
		options.Scale = DefaultScale
	}
	if options.Background == "" {
		options.Background = DefaultBackground
	}
	return options
}

// # Pipeline

// Sanitize strips active content from untrusted template HTML.
//
// Removed classes of content:
//  1. <script> blocks, including their bodies.
//  2. Inline on*= event handler attributes (onclick, onload, ...).
//  3. javascript: URL schemes in href/src values.
//
// Everything else passes through untouched; email HTML relies heavily on
// legacy markup that stricter sanitizers would destroy.
func Sanitize(html string) string {
	html = scriptBlocks.ReplaceAllString(html, "")
	html = eventHandlers.ReplaceAllString(html, "")
	html = jsProtocol.ReplaceAllString(html, "")
	return html
}

// Render wraps sanitized content in a complete scaled preview document.
//
// The body is scaled down with a CSS transform and stretched inversely so the
// template lays out at its natural width, and pointer events are disabled so
// nothing inside the preview is clickable.
func Render(html string, options Options) string {
	options = options.withDefaults()
	content := Sanitize(html)

	// Inverse stretch keeps the scaled body filling the full viewport.
	stretch := int(100/options.Scale + 0.5)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
  line-height: 1.5;
  background: %s;
  transform-origin: top left;
  transform: scale(%g);
  width: %d%%;
  min-height: %d%%;
  display: flex;
  align-items: flex-start;
  justify-content: center;
  padding: 20px;
  pointer-events: none;
  overflow-x: hidden;
  overflow-y: auto;
}
.email-container { max-width: %dpx; width: 100%%; margin: 0 auto; }
img { max-width: 100%%; height: auto; }
a { pointer-events: none; text-decoration: none; }
table { max-width: 100%%; table-layout: fixed; }
td, th { word-wrap: break-word; }
</style>
</head>
<body>
<div class="email-container">%s</div>
</body>
</html>`,
		options.Background,
		options.Scale,
		stretch,
		stretch,
		options.Width,
		content,
	)
}

// DataURL renders the preview document and percent-encodes it as a
// data:text/html URL suitable for direct use as an iframe src.
func DataURL(html string, options Options) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(Render(html, options))
}
