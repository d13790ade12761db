// Package assets embeds the letterhead and signature images.
package assets

import "embed"

// FS holds header.png and ttd.png at its root.
//
//go:embed *.png
var FS embed.FS
