package migrations

import "embed"

// FS contains embedded SQLite migrations for account, catalog and deck storage.
//
//go:embed *.sql
var FS embed.FS
