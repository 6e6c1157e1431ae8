//go:build !(fts5 || sqlite_fts5)

package storage

// Without the tag the mattn driver is not linked; the full-text mirror tables
// would fail to create anyway.
const mattnFTS5 = false
