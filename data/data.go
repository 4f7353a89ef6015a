// Package data embeds the static patient data bundle served by default.
package data

import "embed"

//go:embed *.json
var FS embed.FS
