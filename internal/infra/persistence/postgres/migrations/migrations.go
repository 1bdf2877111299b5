// Package migrations embeds the postgres schema applied by goose on start.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
