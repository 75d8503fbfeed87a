// Package migrations embeds the SQL schema so binaries migrate from any working directory.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

const PostgresDir = "postgres"
