// Package migrations embeds the goose migrations of the postgres store.
package migrations

import "embed"

// FS holds the *.sql files, goose-annotated, at its root.
//
//go:embed *.sql
var FS embed.FS
