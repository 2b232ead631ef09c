package web

import "embed"

//go:embed "assets" "templates"
var Files embed.FS
