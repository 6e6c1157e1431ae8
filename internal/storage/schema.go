package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to index_metadata on creation.
const SchemaVersion = "1"

// CreateSchema creates all tables, indexes, full-text mirror tables and their
// sync triggers, then bootstraps index_metadata.
//
// Children reference their parent by integer id with ON DELETE CASCADE, so the
// connection must have foreign_keys enabled for cascades to fire.
func CreateSchema(db *sql.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Create all tables in dependency order
	tables := []struct {
		name string
		ddl  string
	}{
		{"tokens", createTokensTable},
		{"token_properties", createTokenPropertiesTable},
		{"components", createComponentsTable},
		{"component_props", createComponentPropsTable},
		{"component_slots", createComponentSlotsTable},
		{"component_events", createComponentEventsTable},
		{"component_examples", createComponentExamplesTable},
		{"component_css_classes", createComponentCSSClassesTable},
		{"css_utilities", createCSSUtilitiesTable},
		{"utility_classes", createUtilityClassesTable},
		{"utility_examples", createUtilityExamplesTable},
		{"documentation", createDocumentationTable},
		{"icons", createIconsTable},
		{"index_metadata", createIndexMetadataTable},
		{"tokens_fts", createTokensFTSTable},
		{"docs_fts", createDocsFTSTable},
		{"icons_fts", createIconsFTSTable},
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	for _, trigger := range getFTSTriggers() {
		if _, err := tx.ExecContext(ctx, trigger.ddl); err != nil {
			return fmt.Errorf("failed to create trigger %s: %w", trigger.name, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO index_metadata (key, value, updated_at) VALUES (?, ?, ?)`,
		MetaSchemaVersion, SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap index_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns "0" when the database has no schema yet.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='index_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check index_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM index_metadata WHERE key = ?", MetaSchemaVersion).Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in index_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createTokensTable = `
CREATE TABLE tokens (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL CHECK (category IN
        ('color', 'spacing', 'typography', 'shadow', 'border', 'radius', 'screen', 'grid')),
    subcategory TEXT,                            -- First path segment, -NN suffix stripped
    name TEXT NOT NULL,                          -- Relative path, dots as dashes
    path TEXT NOT NULL UNIQUE,                   -- category.relative.path
    css_variable TEXT,                           -- --category-name
    scss_variable TEXT,                          -- $category-name ($muNNN for spacing)
    value_raw TEXT NOT NULL,
    value_number REAL,                           -- NULL unless value_raw is numeric
    value_unit TEXT,                             -- rem, px, em, %, vh, vw
    value_computed TEXT,                         -- px rendering of rem values
    description TEXT,
    platform TEXT NOT NULL DEFAULT 'all'
)
`

const createTokenPropertiesTable = `
CREATE TABLE token_properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    token_id INTEGER NOT NULL,
    property TEXT NOT NULL,                      -- x, y, blur, spread, opacity
    value TEXT NOT NULL,
    value_number REAL,
    value_unit TEXT,
    FOREIGN KEY (token_id) REFERENCES tokens(id) ON DELETE CASCADE
)
`

const createComponentsTable = `
CREATE TABLE components (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,                   -- Framework prefix stripped
    slug TEXT NOT NULL,                          -- kebab-case name
    category TEXT NOT NULL CHECK (category IN
        ('action', 'form', 'navigation', 'feedback', 'layout', 'data-display', 'other')),
    description TEXT,
    frameworks TEXT NOT NULL DEFAULT '[]'        -- JSON array: vue, react, html
)
`

const createComponentPropsTable = `
CREATE TABLE component_props (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    component_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    type TEXT,
    default_value TEXT,
    required INTEGER NOT NULL DEFAULT 0,         -- Boolean
    options TEXT,                                -- JSON array, NULL when open-ended
    FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
)
`

const createComponentSlotsTable = `
CREATE TABLE component_slots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    component_id INTEGER NOT NULL,
    name TEXT NOT NULL,                          -- "default" when unnamed
    description TEXT,
    FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
)
`

const createComponentEventsTable = `
CREATE TABLE component_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    component_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    payload TEXT,
    description TEXT,
    FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
)
`

const createComponentExamplesTable = `
CREATE TABLE component_examples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    component_id INTEGER NOT NULL,
    framework TEXT NOT NULL,
    title TEXT,
    code TEXT NOT NULL,
    FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
)
`

const createComponentCSSClassesTable = `
CREATE TABLE component_css_classes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    component_id INTEGER NOT NULL,
    class_name TEXT NOT NULL,
    FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE
)
`

const createCSSUtilitiesTable = `
CREATE TABLE css_utilities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    slug TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('layout', 'utility')),
    description TEXT NOT NULL
)
`

const createUtilityClassesTable = `
CREATE TABLE utility_classes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    utility_id INTEGER NOT NULL,
    class_name TEXT NOT NULL,
    FOREIGN KEY (utility_id) REFERENCES css_utilities(id) ON DELETE CASCADE
)
`

const createUtilityExamplesTable = `
CREATE TABLE utility_examples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    utility_id INTEGER NOT NULL,
    title TEXT,
    code TEXT NOT NULL,
    FOREIGN KEY (utility_id) REFERENCES css_utilities(id) ON DELETE CASCADE
)
`

const createDocumentationTable = `
CREATE TABLE documentation (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    path TEXT NOT NULL UNIQUE,                   -- URL-style path, /components/button
    content TEXT NOT NULL,                       -- Cleaned Markdown body
    category TEXT,
    keywords TEXT NOT NULL DEFAULT '[]'          -- JSON array
)
`

const createIconsTable = `
CREATE TABLE icons (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,                   -- Export identifier, ArrowDown16
    icon_name TEXT NOT NULL,                     -- Size suffix stripped, ArrowDown
    type TEXT NOT NULL DEFAULT 'unknown',
    size INTEGER NOT NULL DEFAULT 16,
    view_box TEXT NOT NULL DEFAULT '0 0 16 16',
    paths TEXT NOT NULL                          -- Serialized shape tree, verbatim
)
`

const createIndexMetadataTable = `
CREATE TABLE index_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL                     -- ISO 8601
)
`

// Full-text mirror tables. rowid equals the base table id; the triggers below
// are the only writers.

const createTokensFTSTable = `
CREATE VIRTUAL TABLE tokens_fts USING fts5(
    path,
    name,
    value_raw,
    description,
    tokenize = 'unicode61 remove_diacritics 2'
)
`

const createDocsFTSTable = `
CREATE VIRTUAL TABLE docs_fts USING fts5(
    title,
    content,
    keywords,                                    -- Space-joined keywords array
    tokenize = 'unicode61 remove_diacritics 2'
)
`

const createIconsFTSTable = `
CREATE VIRTUAL TABLE icons_fts USING fts5(
    name,
    icon_name,
    type,
    tokenize = 'unicode61 remove_diacritics 2'
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		// tokens
		"CREATE INDEX idx_tokens_category ON tokens(category)",
		"CREATE INDEX idx_token_properties_token_id ON token_properties(token_id)",

		// components and children
		"CREATE INDEX idx_components_slug ON components(slug)",
		"CREATE INDEX idx_components_category ON components(category)",
		"CREATE INDEX idx_component_props_component_id ON component_props(component_id)",
		"CREATE INDEX idx_component_slots_component_id ON component_slots(component_id)",
		"CREATE INDEX idx_component_events_component_id ON component_events(component_id)",
		"CREATE INDEX idx_component_examples_component_id ON component_examples(component_id)",
		"CREATE INDEX idx_component_css_classes_component_id ON component_css_classes(component_id)",

		// css utilities
		"CREATE INDEX idx_css_utilities_slug ON css_utilities(slug)",
		"CREATE INDEX idx_utility_classes_utility_id ON utility_classes(utility_id)",
		"CREATE INDEX idx_utility_examples_utility_id ON utility_examples(utility_id)",

		// documentation and icons
		"CREATE INDEX idx_documentation_category ON documentation(category)",
		"CREATE INDEX idx_icons_icon_name ON icons(icon_name)",
	}
}

type triggerDDL struct {
	name string
	ddl  string
}

// getFTSTriggers keeps every mirror table in lockstep with its base table.
func getFTSTriggers() []triggerDDL {
	const docsKeywords = `(SELECT COALESCE(group_concat(value, ' '), '') FROM json_each(NEW.keywords))`

	return []triggerDDL{
		{"tokens_fts_insert", `CREATE TRIGGER tokens_fts_insert AFTER INSERT ON tokens
		BEGIN
			INSERT INTO tokens_fts(rowid, path, name, value_raw, description)
			VALUES (NEW.id, NEW.path, NEW.name, NEW.value_raw, COALESCE(NEW.description, ''));
		END`},
		{"tokens_fts_update", `CREATE TRIGGER tokens_fts_update AFTER UPDATE ON tokens
		BEGIN
			DELETE FROM tokens_fts WHERE rowid = OLD.id;
			INSERT INTO tokens_fts(rowid, path, name, value_raw, description)
			VALUES (NEW.id, NEW.path, NEW.name, NEW.value_raw, COALESCE(NEW.description, ''));
		END`},
		{"tokens_fts_delete", `CREATE TRIGGER tokens_fts_delete AFTER DELETE ON tokens
		BEGIN
			DELETE FROM tokens_fts WHERE rowid = OLD.id;
		END`},

		{"docs_fts_insert", `CREATE TRIGGER docs_fts_insert AFTER INSERT ON documentation
		BEGIN
			INSERT INTO docs_fts(rowid, title, content, keywords)
			VALUES (NEW.id, NEW.title, NEW.content, ` + docsKeywords + `);
		END`},
		{"docs_fts_update", `CREATE TRIGGER docs_fts_update AFTER UPDATE ON documentation
		BEGIN
			DELETE FROM docs_fts WHERE rowid = OLD.id;
			INSERT INTO docs_fts(rowid, title, content, keywords)
			VALUES (NEW.id, NEW.title, NEW.content, ` + docsKeywords + `);
		END`},
		{"docs_fts_delete", `CREATE TRIGGER docs_fts_delete AFTER DELETE ON documentation
		BEGIN
			DELETE FROM docs_fts WHERE rowid = OLD.id;
		END`},

		{"icons_fts_insert", `CREATE TRIGGER icons_fts_insert AFTER INSERT ON icons
		BEGIN
			INSERT INTO icons_fts(rowid, name, icon_name, type)
			VALUES (NEW.id, NEW.name, NEW.icon_name, NEW.type);
		END`},
		{"icons_fts_update", `CREATE TRIGGER icons_fts_update AFTER UPDATE ON icons
		BEGIN
			DELETE FROM icons_fts WHERE rowid = OLD.id;
			INSERT INTO icons_fts(rowid, name, icon_name, type)
			VALUES (NEW.id, NEW.name, NEW.icon_name, NEW.type);
		END`},
		{"icons_fts_delete", `CREATE TRIGGER icons_fts_delete AFTER DELETE ON icons
		BEGIN
			DELETE FROM icons_fts WHERE rowid = OLD.id;
		END`},
	}
}

// ftsMirrors pairs each mirror table with its base table.
var ftsMirrors = []struct {
	base string
	fts  string
}{
	{"tokens", "tokens_fts"},
	{"documentation", "docs_fts"},
	{"icons", "icons_fts"},
}
