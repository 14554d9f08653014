// Package migrations contains embedded SQL migrations for the replay
// SQLite store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
