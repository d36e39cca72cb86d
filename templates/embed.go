package templates

import "embed"

// EmailFS contains the HTML email templates. layout.html wraps every message.
//
//go:embed email/*.html
var EmailFS embed.FS
