// Package migrations embeds the server's goose migration files.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
