package resources

import "embed"

//go:embed migrations i18n about_fallback.md
var FS embed.FS
