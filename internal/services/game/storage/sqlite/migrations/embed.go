package migrations

import "embed"

// FS holds the ordered *.sql migrations applied at Open.
//
//go:embed *.sql
var FS embed.FS
