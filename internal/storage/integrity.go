package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Integrity issue kinds.
const (
	IssueOrphan      = "orphan"
	IssueFTSMismatch = "fts_mismatch"
)

// IntegrityIssue is one consistency violation found by CheckIntegrity.
type IntegrityIssue struct {
	Kind   string `json:"kind"`
	Table  string `json:"table"`
	Count  int    `json:"count"`
	Detail string `json:"detail"`
}

var parentLinks = []struct {
	child, column, parent string
}{
	{"token_properties", "token_id", "tokens"},
	{"component_props", "component_id", "components"},
	{"component_slots", "component_id", "components"},
	{"component_events", "component_id", "components"},
	{"component_examples", "component_id", "components"},
	{"component_css_classes", "component_id", "components"},
	{"utility_classes", "utility_id", "css_utilities"},
	{"utility_examples", "utility_id", "css_utilities"},
}

// CheckIntegrity reports child rows without a parent and full-text mirrors
// whose row count drifted from their base table. An empty result means the
// index is consistent.
func CheckIntegrity(ctx context.Context, db *sql.DB) ([]IntegrityIssue, error) {
	var issues []IntegrityIssue

	for _, link := range parentLinks {
		var n int
		query := fmt.Sprintf(
			`SELECT COUNT(*) FROM %[1]s c LEFT JOIN %[3]s p ON p.id = c.%[2]s WHERE p.id IS NULL`,
			link.child, link.column, link.parent)
		if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to check orphans in %s: %w", link.child, err)
		}
		if n > 0 {
			issues = append(issues, IntegrityIssue{
				Kind:   IssueOrphan,
				Table:  link.child,
				Count:  n,
				Detail: fmt.Sprintf("%d %s rows reference a missing %s row", n, link.child, link.parent),
			})
		}
	}

	for _, m := range ftsMirrors {
		base, err := countRows(ctx, db, m.base)
		if err != nil {
			return nil, err
		}
		mirror, err := countRows(ctx, db, m.fts)
		if err != nil {
			return nil, err
		}
		if base != mirror {
			issues = append(issues, IntegrityIssue{
				Kind:   IssueFTSMismatch,
				Table:  m.fts,
				Count:  mirror - base,
				Detail: fmt.Sprintf("%s has %d rows, %s has %d", m.fts, mirror, m.base, base),
			})
		}
	}

	return issues, nil
}
