//go:build fts5 || sqlite_fts5

// mattn/go-sqlite3 compiles FTS5 in only when one of these tags is set.
// See: github.com/mattn/go-sqlite3/sqlite3_opt_fts5.go
package storage

import (
	_ "github.com/mattn/go-sqlite3"
)

const mattnFTS5 = true
