package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go, FTS5 built in
	DriverMattn   = "sqlite3" // mattn/go-sqlite3, cgo, needs the sqlite_fts5 build tag
)

// DefaultBusyTimeoutMS is used when Options.BusyTimeoutMS is zero.
const DefaultBusyTimeoutMS = 5000

// Options controls how an index file is opened.
type Options struct {
	Driver        string // DriverModernc when empty
	BusyTimeoutMS int
	ReadOnly      bool
}

func (o Options) driver() string {
	if o.Driver == "" {
		return DriverModernc
	}
	return o.Driver
}

func (o Options) busyTimeout() int {
	if o.BusyTimeoutMS <= 0 {
		return DefaultBusyTimeoutMS
	}
	return o.BusyTimeoutMS
}

// Open opens the index file at path. Writers get WAL journaling and foreign
// keys; readers open with mode=ro so any number of them can run next to a
// single rebuild writer.
func Open(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	driver := opts.driver()
	dsn, err := buildDSN(path, opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	return db, nil
}

// OpenReadOnly is Open with ReadOnly set.
func OpenReadOnly(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	opts.ReadOnly = true
	return Open(ctx, path, opts)
}

func buildDSN(path string, opts Options) (string, error) {
	params := url.Values{}
	switch opts.driver() {
	case DriverModernc:
		params.Add("_pragma", "foreign_keys(1)")
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.busyTimeout()))
		if !opts.ReadOnly {
			params.Add("_pragma", "journal_mode(WAL)")
		}
	case DriverMattn:
		if !mattnFTS5 {
			return "", fmt.Errorf("driver %q requires building with -tags sqlite_fts5", DriverMattn)
		}
		params.Set("_foreign_keys", "on")
		params.Set("_busy_timeout", fmt.Sprintf("%d", opts.busyTimeout()))
		if !opts.ReadOnly {
			params.Set("_journal_mode", "WAL")
		}
	default:
		return "", fmt.Errorf("unsupported driver %q (want %q or %q)", opts.Driver, DriverModernc, DriverMattn)
	}
	if opts.ReadOnly {
		params.Set("mode", "ro")
	}

	return "file:" + strings.TrimPrefix(path, "file:") + "?" + params.Encode(), nil
}
