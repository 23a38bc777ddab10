// Package navguard embeds the SPA shell and its static assets.
package navguard

import "embed"

// ShellHTML is the SPA entry document served for every allowed page.
//
//go:embed frontend/index.html
var ShellHTML []byte

// StaticFS holds the files served under /static/.
//
//go:embed all:frontend/static
var StaticFS embed.FS
