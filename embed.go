package breakai

import "embed"

// MigrationsFS embeds SQL migrations so the binary can apply them at startup.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
