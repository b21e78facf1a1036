package migrations

import "embed"

// FS contains the embedded dataset migrations. They are written to run unchanged on
// SQLite and Postgres.
//
//go:embed *.sql
var FS embed.FS
