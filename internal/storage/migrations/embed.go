// Package migrations applies the embedded schema: trades and blacklist on
// PostgreSQL, price history on ClickHouse. All files are idempotent
// (CREATE ... IF NOT EXISTS) so running them on every start is safe.
package migrations

import "embed"

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS
