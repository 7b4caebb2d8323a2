package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded chat page with static/ as the root.
func StaticFS() fs.FS {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil
	}
	return subFS
}
