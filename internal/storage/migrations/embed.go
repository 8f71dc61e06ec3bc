// ABOUTME: Embedded goose migrations for the SQLite session store
// ABOUTME: Applied on every open; goose tracks what already ran

package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
