// Package appfs exposes embedded static assets: database migrations
// and email templates.
package appfs

import "embed"

// Directory patterns skip _-prefixed files; the base layouts must be named
// explicitly to be embedded.
//
//go:embed migrations assets
//go:embed assets/templates/email/_base.txt assets/templates/email/_base.gohtml
var FS embed.FS
