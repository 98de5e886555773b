package visualization

import "embed"

// templates contains the embedded HTML viewer.
//
//go:embed templates/*
var templates embed.FS
