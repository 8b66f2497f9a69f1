package migrations

import "embed"

// FS holds the ledger schema, applied in file name order
//
//go:embed *.sql
var FS embed.FS
