// Package migrations embeds the SQLite schema applied by goose on open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
