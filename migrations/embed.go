// Package migrations embeds the SQL files that define the users, tickets and
// conversation state schema.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
