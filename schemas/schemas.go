// Package schemas embeds the JSON schemas of the public request contracts.
package schemas

import "embed"

//go:embed requests
var SchemasFS embed.FS
