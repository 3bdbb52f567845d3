// Package migrations embeds the SQL schema for the record store.
package migrations

import "embed"

// FS holds the .up.sql and .down.sql files, applied in version order.
//
//go:embed *.sql
var FS embed.FS
