// Package migrations embeds the queue database schema.
package migrations

import "embed"

// FS holds the queue migrations.
//
//go:embed *.sql
var FS embed.FS
