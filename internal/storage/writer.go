package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

// index_metadata keys.
const (
	MetaSchemaVersion = "schema_version"
	MetaBuildID       = "build_id"
	MetaBuiltAt       = "built_at"
	MetaMode          = "mode"
)

// Writer bulk-inserts extracted records. Each Insert call runs in its own
// transaction: a failure rolls back that category only.
type Writer struct {
	db *sql.DB
}

// NewWriter wraps an open database that already has the schema.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// InsertTokens writes tokens and their properties. A duplicate path fails the
// whole batch.
func (w *Writer) InsertTokens(ctx context.Context, tokens []extraction.Token) error {
	return w.inTx(ctx, "tokens", func(tx *sql.Tx) error {
		for _, tok := range tokens {
			platform := tok.Platform
			if platform == "" {
				platform = extraction.DefaultPlatform
			}
			id, err := insertRow(ctx, tx, sq.Insert("tokens").
				Columns("category", "subcategory", "name", "path", "css_variable", "scss_variable",
					"value_raw", "value_number", "value_unit", "value_computed", "description", "platform").
				Values(tok.Category, nullable(tok.Subcategory), tok.Name, tok.Path,
					nullable(tok.CSSVariable), nullable(tok.SCSSVariable), tok.ValueRaw,
					nullable(tok.ValueNumber), nullable(tok.ValueUnit), nullable(tok.ValueComputed),
					nullable(tok.Description), platform))
			if err != nil {
				return fmt.Errorf("token %s: %w", tok.Path, err)
			}

			for _, prop := range tok.Properties {
				_, err := insertRow(ctx, tx, sq.Insert("token_properties").
					Columns("token_id", "property", "value", "value_number", "value_unit").
					Values(id, prop.Property, prop.Value, nullable(prop.ValueNumber), nullable(prop.ValueUnit)))
				if err != nil {
					return fmt.Errorf("token %s property %s: %w", tok.Path, prop.Property, err)
				}
			}
		}
		return nil
	})
}

// InsertComponents writes components with all child collections. Children
// always use the parent id returned by the same transaction.
func (w *Writer) InsertComponents(ctx context.Context, components []extraction.Component) error {
	return w.inTx(ctx, "components", func(tx *sql.Tx) error {
		for _, c := range components {
			frameworks, err := encodeStrings(c.Frameworks, true)
			if err != nil {
				return err
			}
			id, err := insertRow(ctx, tx, sq.Insert("components").
				Columns("name", "slug", "category", "description", "frameworks").
				Values(c.Name, c.Slug, c.Category, nullable(c.Description), frameworks))
			if err != nil {
				return fmt.Errorf("component %s: %w", c.Name, err)
			}

			if err := insertComponentChildren(ctx, tx, id, c); err != nil {
				return fmt.Errorf("component %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func insertComponentChildren(ctx context.Context, tx *sql.Tx, id int64, c extraction.Component) error {
	for _, p := range c.Props {
		options, err := encodeStrings(p.Options, false)
		if err != nil {
			return err
		}
		if _, err := insertRow(ctx, tx, sq.Insert("component_props").
			Columns("component_id", "name", "type", "default_value", "required", "options").
			Values(id, p.Name, nullable(p.Type), nullable(p.DefaultValue), p.Required, options)); err != nil {
			return fmt.Errorf("prop %s: %w", p.Name, err)
		}
	}
	for _, s := range c.Slots {
		if _, err := insertRow(ctx, tx, sq.Insert("component_slots").
			Columns("component_id", "name", "description").
			Values(id, s.Name, nullable(s.Description))); err != nil {
			return fmt.Errorf("slot %s: %w", s.Name, err)
		}
	}
	for _, e := range c.Events {
		if _, err := insertRow(ctx, tx, sq.Insert("component_events").
			Columns("component_id", "name", "payload", "description").
			Values(id, e.Name, nullable(e.Payload), nullable(e.Description))); err != nil {
			return fmt.Errorf("event %s: %w", e.Name, err)
		}
	}
	for _, ex := range c.Examples {
		if _, err := insertRow(ctx, tx, sq.Insert("component_examples").
			Columns("component_id", "framework", "title", "code").
			Values(id, ex.Framework, nullable(ex.Title), ex.Code)); err != nil {
			return fmt.Errorf("example: %w", err)
		}
	}
	for _, class := range c.CSSClasses {
		if _, err := insertRow(ctx, tx, sq.Insert("component_css_classes").
			Columns("component_id", "class_name").
			Values(id, class)); err != nil {
			return fmt.Errorf("css class %s: %w", class, err)
		}
	}
	return nil
}

// InsertCSSUtilities writes utilities with their classes and examples.
func (w *Writer) InsertCSSUtilities(ctx context.Context, utilities []extraction.CSSUtility) error {
	return w.inTx(ctx, "css utilities", func(tx *sql.Tx) error {
		for _, u := range utilities {
			id, err := insertRow(ctx, tx, sq.Insert("css_utilities").
				Columns("name", "slug", "category", "description").
				Values(u.Name, u.Slug, u.Category, u.Description))
			if err != nil {
				return fmt.Errorf("utility %s: %w", u.Name, err)
			}
			for _, class := range u.Classes {
				if _, err := insertRow(ctx, tx, sq.Insert("utility_classes").
					Columns("utility_id", "class_name").
					Values(id, class)); err != nil {
					return fmt.Errorf("utility %s class %s: %w", u.Name, class, err)
				}
			}
			for _, ex := range u.Examples {
				if _, err := insertRow(ctx, tx, sq.Insert("utility_examples").
					Columns("utility_id", "title", "code").
					Values(id, nullable(ex.Title), ex.Code)); err != nil {
					return fmt.Errorf("utility %s example: %w", u.Name, err)
				}
			}
		}
		return nil
	})
}

// InsertDocumentation writes documentation pages. The docs_fts mirror is
// filled by trigger.
func (w *Writer) InsertDocumentation(ctx context.Context, docs []extraction.Documentation) error {
	return w.inTx(ctx, "documentation", func(tx *sql.Tx) error {
		for _, d := range docs {
			keywords, err := encodeStrings(d.Keywords, true)
			if err != nil {
				return err
			}
			if _, err := insertRow(ctx, tx, sq.Insert("documentation").
				Columns("title", "path", "content", "category", "keywords").
				Values(d.Title, d.Path, d.Content, nullable(d.Category), keywords)); err != nil {
				return fmt.Errorf("document %s: %w", d.Path, err)
			}
		}
		return nil
	})
}

// InsertIcons writes icon registry entries.
func (w *Writer) InsertIcons(ctx context.Context, icons []extraction.Icon) error {
	return w.inTx(ctx, "icons", func(tx *sql.Tx) error {
		for _, ic := range icons {
			if _, err := insertRow(ctx, tx, sq.Insert("icons").
				Columns("name", "icon_name", "type", "size", "view_box", "paths").
				Values(ic.Name, ic.IconName, ic.Type, ic.Size, ic.ViewBox, ic.Paths)); err != nil {
				return fmt.Errorf("icon %s: %w", ic.Name, err)
			}
		}
		return nil
	})
}

// SetMetadata upserts one index_metadata entry.
func (w *Writer) SetMetadata(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := w.db.ExecContext(ctx, `
		INSERT INTO index_metadata (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}

func (w *Writer) inTx(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", what, err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if err := fn(tx); err != nil {
		return fmt.Errorf("failed to insert %s: %w", what, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}

func insertRow(ctx context.Context, tx *sql.Tx, b sq.InsertBuilder) (int64, error) {
	res, err := b.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// encodeStrings stores a string set as a JSON array. With emptyArray false a
// nil/empty set is stored as NULL.
func encodeStrings(values []string, emptyArray bool) (any, error) {
	if len(values) == 0 {
		if emptyArray {
			return "[]", nil
		}
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %v: %w", values, err)
	}
	return string(data), nil
}
