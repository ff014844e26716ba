// Package appfs embeds static application assets (database migrations).
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
