// Package migrations embeds the ledger database schema.
package migrations

import "embed"

// FS holds the ledger migrations.
//
//go:embed *.sql
var FS embed.FS
