package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
)

var (
	// ErrNotFound is returned by single-record lookups that match nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery is returned for empty or malformed search queries and
	// unknown category filters.
	ErrInvalidQuery = errors.New("invalid query")
)

// AllCategories selects every token category in TokensByCategory.
const AllCategories = "all"

// DefaultSearchLimit applies when a search is called with limit <= 0.
const DefaultSearchLimit = 20

// Store serves typed reads over an index. Safe for concurrent use; it holds
// no state beyond the handle.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ComponentSummary is one row of ListComponents.
type ComponentSummary struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
}

// DocumentHit is one full-text documentation match.
type DocumentHit struct {
	Title    string  `json:"title"`
	Path     string  `json:"path"`
	Category *string `json:"category,omitempty"`
	Snippet  string  `json:"snippet"` // matches wrapped in <mark></mark>
}

// DocumentSummary is one row of ListDocumentation.
type DocumentSummary struct {
	Title    string  `json:"title"`
	Path     string  `json:"path"`
	Category *string `json:"category,omitempty"`
}

// UtilitySummary is one row of ListUtilities.
type UtilitySummary struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ClassCount  int    `json:"classCount"`
}

// Stats holds row counts per entity type.
type Stats struct {
	Tokens               int            `json:"tokens"`
	TokenProperties      int            `json:"tokenProperties"`
	Components           int            `json:"components"`
	Props                int            `json:"props"`
	Slots                int            `json:"slots"`
	Events               int            `json:"events"`
	Examples             int            `json:"examples"`
	CSSClasses           int            `json:"cssClasses"`
	CSSUtilities         int            `json:"cssUtilities"`
	UtilityClasses       int            `json:"utilityClasses"`
	Documentation        int            `json:"documentation"`
	Icons                int            `json:"icons"`
	TokensByCategory     map[string]int `json:"tokensByCategory"`
	ComponentsByCategory map[string]int `json:"componentsByCategory"`
}

var tokenColumns = []string{
	"id", "category", "subcategory", "name", "path", "css_variable", "scss_variable",
	"value_raw", "value_number", "value_unit", "value_computed", "description", "platform",
}

// TokensByCategory returns the tokens of one category, or every token for
// AllCategories, ordered by id.
func (s *Store) TokensByCategory(ctx context.Context, category string) ([]extraction.Token, error) {
	q := sq.Select(tokenColumns...).From("tokens").OrderBy("id")
	if category != AllCategories {
		if !slices.Contains(extraction.TokenCategories, category) {
			return nil, fmt.Errorf("%w: unknown token category %q", ErrInvalidQuery, category)
		}
		q = q.Where(sq.Eq{"category": category})
	}
	return s.queryTokens(ctx, q)
}

// TokenByPath returns the token with the given dotted path.
func (s *Store) TokenByPath(ctx context.Context, path string) (*extraction.Token, error) {
	tokens, err := s.queryTokens(ctx, sq.Select(tokenColumns...).From("tokens").Where(sq.Eq{"path": path}))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token %s: %w", path, ErrNotFound)
	}
	return &tokens[0], nil
}

// SearchTokens runs a full-text query over token path, name, value and
// description, best match first.
func (s *Store) SearchTokens(ctx context.Context, query string, limit int) ([]extraction.Token, error) {
	if err := checkSearchQuery(query); err != nil {
		return nil, err
	}
	cols := make([]string, len(tokenColumns))
	for i, c := range tokenColumns {
		cols[i] = "t." + c
	}
	q := sq.Select(cols...).
		From("tokens_fts").
		Join("tokens t ON t.id = tokens_fts.rowid").
		Where("tokens_fts MATCH ?", query).
		OrderBy("rank").
		Limit(searchLimit(limit))
	tokens, err := s.queryTokens(ctx, q)
	if err != nil {
		return nil, classifyQueryError(err)
	}
	return tokens, nil
}

func (s *Store) queryTokens(ctx context.Context, q sq.SelectBuilder) ([]extraction.Token, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []extraction.Token
	var ids []int64
	for rows.Next() {
		var (
			tok                                                 extraction.Token
			subcategory, cssVar, scssVar, unit, computed, descr sql.NullString
			number                                              sql.NullFloat64
		)
		if err := rows.Scan(&tok.ID, &tok.Category, &subcategory, &tok.Name, &tok.Path, &cssVar, &scssVar,
			&tok.ValueRaw, &number, &unit, &computed, &descr, &tok.Platform); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tok.Subcategory = nullString(subcategory)
		tok.CSSVariable = nullString(cssVar)
		tok.SCSSVariable = nullString(scssVar)
		tok.ValueNumber = nullFloat(number)
		tok.ValueUnit = nullString(unit)
		tok.ValueComputed = nullString(computed)
		tok.Description = nullString(descr)
		tokens = append(tokens, tok)
		ids = append(ids, tok.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	if len(ids) == 0 {
		return tokens, nil
	}
	props, err := s.tokenProperties(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		tokens[i].Properties = props[tokens[i].ID]
	}
	return tokens, nil
}

func (s *Store) tokenProperties(ctx context.Context, ids []int64) (map[int64][]extraction.TokenProperty, error) {
	rows, err := sq.Select("token_id", "property", "value", "value_number", "value_unit").
		From("token_properties").
		Where(sq.Eq{"token_id": ids}).
		OrderBy("id").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query token properties: %w", err)
	}
	defer rows.Close()

	props := make(map[int64][]extraction.TokenProperty)
	for rows.Next() {
		var (
			tokenID int64
			p       extraction.TokenProperty
			number  sql.NullFloat64
			unit    sql.NullString
		)
		if err := rows.Scan(&tokenID, &p.Property, &p.Value, &number, &unit); err != nil {
			return nil, fmt.Errorf("failed to scan token property: %w", err)
		}
		p.ValueNumber = nullFloat(number)
		p.ValueUnit = nullString(unit)
		props[tokenID] = append(props[tokenID], p)
	}
	return props, rows.Err()
}

// ComponentBySlug returns a component with every child collection populated.
func (s *Store) ComponentBySlug(ctx context.Context, slug string, caseInsensitive bool) (*extraction.Component, error) {
	q := sq.Select("id", "name", "slug", "category", "description", "frameworks").
		From("components").
		OrderBy("id").
		Limit(1)
	if caseInsensitive {
		q = q.Where("slug = ? COLLATE NOCASE", slug)
	} else {
		q = q.Where(sq.Eq{"slug": slug})
	}

	var (
		c          extraction.Component
		descr      sql.NullString
		frameworks string
	)
	err := q.RunWith(s.db).QueryRowContext(ctx).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Category, &descr, &frameworks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("component %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query component %s: %w", slug, err)
	}
	c.Description = nullString(descr)
	if c.Frameworks, err = decodeStrings(frameworks); err != nil {
		return nil, err
	}

	if err := s.loadComponentChildren(ctx, &c); err != nil {
		return nil, fmt.Errorf("component %s: %w", slug, err)
	}
	return &c, nil
}

func (s *Store) loadComponentChildren(ctx context.Context, c *extraction.Component) error {
	err := s.eachRow(ctx, sq.Select("name", "type", "default_value", "required", "options").
		From("component_props").Where(sq.Eq{"component_id": c.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var (
				p                 extraction.Prop
				typ, def, options sql.NullString
			)
			if err := rows.Scan(&p.Name, &typ, &def, &p.Required, &options); err != nil {
				return err
			}
			p.Type = nullString(typ)
			p.DefaultValue = nullString(def)
			if options.Valid {
				opts, err := decodeStrings(options.String)
				if err != nil {
					return err
				}
				p.Options = opts
			}
			c.Props = append(c.Props, p)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load props: %w", err)
	}

	err = s.eachRow(ctx, sq.Select("name", "description").
		From("component_slots").Where(sq.Eq{"component_id": c.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var (
				slot  extraction.Slot
				descr sql.NullString
			)
			if err := rows.Scan(&slot.Name, &descr); err != nil {
				return err
			}
			slot.Description = nullString(descr)
			c.Slots = append(c.Slots, slot)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load slots: %w", err)
	}

	err = s.eachRow(ctx, sq.Select("name", "payload", "description").
		From("component_events").Where(sq.Eq{"component_id": c.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var (
				ev             extraction.Event
				payload, descr sql.NullString
			)
			if err := rows.Scan(&ev.Name, &payload, &descr); err != nil {
				return err
			}
			ev.Payload = nullString(payload)
			ev.Description = nullString(descr)
			c.Events = append(c.Events, ev)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	err = s.eachRow(ctx, sq.Select("framework", "title", "code").
		From("component_examples").Where(sq.Eq{"component_id": c.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var (
				ex    extraction.Example
				title sql.NullString
			)
			if err := rows.Scan(&ex.Framework, &title, &ex.Code); err != nil {
				return err
			}
			ex.Title = nullString(title)
			c.Examples = append(c.Examples, ex)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load examples: %w", err)
	}

	err = s.eachRow(ctx, sq.Select("class_name").
		From("component_css_classes").Where(sq.Eq{"component_id": c.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var class string
			if err := rows.Scan(&class); err != nil {
				return err
			}
			c.CSSClasses = append(c.CSSClasses, class)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load css classes: %w", err)
	}
	return nil
}

// ListComponents returns component summaries ordered by name. An empty
// category lists every component.
func (s *Store) ListComponents(ctx context.Context, category string) ([]ComponentSummary, error) {
	q := sq.Select("name", "slug", "category", "description").From("components").OrderBy("name")
	if category != "" {
		if !slices.Contains(extraction.ComponentCategories, category) {
			return nil, fmt.Errorf("%w: unknown component category %q", ErrInvalidQuery, category)
		}
		q = q.Where(sq.Eq{"category": category})
	}

	var out []ComponentSummary
	err := s.eachRow(ctx, q, func(rows *sql.Rows) error {
		var (
			c     ComponentSummary
			descr sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Slug, &c.Category, &descr); err != nil {
			return err
		}
		c.Description = nullString(descr)
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	return out, nil
}

// SearchDocumentation runs a full-text query over title, content and
// keywords. Snippets come from the best-matching column.
func (s *Store) SearchDocumentation(ctx context.Context, query string, limit int) ([]DocumentHit, error) {
	if err := checkSearchQuery(query); err != nil {
		return nil, err
	}
	q := sq.Select("d.title", "d.path", "d.category",
		"snippet(docs_fts, -1, '<mark>', '</mark>', '...', 32)").
		From("docs_fts").
		Join("documentation d ON d.id = docs_fts.rowid").
		Where("docs_fts MATCH ?", query).
		OrderBy("rank").
		Limit(searchLimit(limit))

	var hits []DocumentHit
	err := s.eachRow(ctx, q, func(rows *sql.Rows) error {
		var (
			h        DocumentHit
			category sql.NullString
		)
		if err := rows.Scan(&h.Title, &h.Path, &category, &h.Snippet); err != nil {
			return err
		}
		h.Category = nullString(category)
		hits = append(hits, h)
		return nil
	})
	if err != nil {
		return nil, classifyQueryError(fmt.Errorf("failed to search documentation: %w", err))
	}
	return hits, nil
}

// DocumentByPath returns one documentation page.
func (s *Store) DocumentByPath(ctx context.Context, path string) (*extraction.Documentation, error) {
	var (
		d        extraction.Documentation
		category sql.NullString
		keywords string
	)
	err := sq.Select("id", "title", "path", "content", "category", "keywords").
		From("documentation").
		Where(sq.Eq{"path": path}).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&d.ID, &d.Title, &d.Path, &d.Content, &category, &keywords)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %s: %w", path, err)
	}
	d.Category = nullString(category)
	if d.Keywords, err = decodeStrings(keywords); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocumentation returns page summaries ordered by path. An empty category
// lists every page.
func (s *Store) ListDocumentation(ctx context.Context, category string) ([]DocumentSummary, error) {
	q := sq.Select("title", "path", "category").From("documentation").OrderBy("path")
	if category != "" {
		q = q.Where(sq.Eq{"category": category})
	}

	var out []DocumentSummary
	err := s.eachRow(ctx, q, func(rows *sql.Rows) error {
		var (
			d   DocumentSummary
			cat sql.NullString
		)
		if err := rows.Scan(&d.Title, &d.Path, &cat); err != nil {
			return err
		}
		d.Category = nullString(cat)
		out = append(out, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documentation: %w", err)
	}
	return out, nil
}

// UtilityBySlug returns a CSS utility with its classes and examples.
func (s *Store) UtilityBySlug(ctx context.Context, slug string) (*extraction.CSSUtility, error) {
	var u extraction.CSSUtility
	err := sq.Select("id", "name", "slug", "category", "description").
		From("css_utilities").
		Where("slug = ? COLLATE NOCASE", slug).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&u.ID, &u.Name, &u.Slug, &u.Category, &u.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("css utility %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query css utility %s: %w", slug, err)
	}

	err = s.eachRow(ctx, sq.Select("class_name").
		From("utility_classes").Where(sq.Eq{"utility_id": u.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var class string
			if err := rows.Scan(&class); err != nil {
				return err
			}
			u.Classes = append(u.Classes, class)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load utility classes: %w", err)
	}

	err = s.eachRow(ctx, sq.Select("title", "code").
		From("utility_examples").Where(sq.Eq{"utility_id": u.ID}).OrderBy("id"),
		func(rows *sql.Rows) error {
			var (
				ex    extraction.UtilityExample
				title sql.NullString
			)
			if err := rows.Scan(&title, &ex.Code); err != nil {
				return err
			}
			ex.Title = nullString(title)
			u.Examples = append(u.Examples, ex)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load utility examples: %w", err)
	}
	return &u, nil
}

// ListUtilities returns utility summaries ordered by name. An empty category
// lists every utility.
func (s *Store) ListUtilities(ctx context.Context, category string) ([]UtilitySummary, error) {
	q := sq.Select("u.name", "u.slug", "u.category", "u.description", "COUNT(c.id)").
		From("css_utilities u").
		LeftJoin("utility_classes c ON c.utility_id = u.id").
		GroupBy("u.id").
		OrderBy("u.name")
	if category != "" {
		if category != extraction.UtilityLayout && category != extraction.UtilityUtility {
			return nil, fmt.Errorf("%w: unknown utility category %q", ErrInvalidQuery, category)
		}
		q = q.Where(sq.Eq{"u.category": category})
	}

	var out []UtilitySummary
	err := s.eachRow(ctx, q, func(rows *sql.Rows) error {
		var u UtilitySummary
		if err := rows.Scan(&u.Name, &u.Slug, &u.Category, &u.Description, &u.ClassCount); err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list css utilities: %w", err)
	}
	return out, nil
}

var iconColumns = []string{"id", "name", "icon_name", "type", "size", "view_box", "paths"}

// IconByName looks an icon up by export identifier, case-insensitively.
func (s *Store) IconByName(ctx context.Context, name string) (*extraction.Icon, error) {
	icons, err := s.queryIcons(ctx, sq.Select(iconColumns...).
		From("icons").
		Where("name = ? COLLATE NOCASE", name).
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(icons) == 0 {
		return nil, fmt.Errorf("icon %s: %w", name, ErrNotFound)
	}
	return &icons[0], nil
}

// SearchIcons runs a full-text query over icon names and types.
func (s *Store) SearchIcons(ctx context.Context, query string, limit int) ([]extraction.Icon, error) {
	if err := checkSearchQuery(query); err != nil {
		return nil, err
	}
	cols := make([]string, len(iconColumns))
	for i, c := range iconColumns {
		cols[i] = "i." + c
	}
	icons, err := s.queryIcons(ctx, sq.Select(cols...).
		From("icons_fts").
		Join("icons i ON i.id = icons_fts.rowid").
		Where("icons_fts MATCH ?", query).
		OrderBy("rank").
		Limit(searchLimit(limit)))
	if err != nil {
		return nil, classifyQueryError(err)
	}
	return icons, nil
}

func (s *Store) queryIcons(ctx context.Context, q sq.SelectBuilder) ([]extraction.Icon, error) {
	var icons []extraction.Icon
	err := s.eachRow(ctx, q, func(rows *sql.Rows) error {
		var ic extraction.Icon
		if err := rows.Scan(&ic.ID, &ic.Name, &ic.IconName, &ic.Type, &ic.Size, &ic.ViewBox, &ic.Paths); err != nil {
			return err
		}
		icons = append(icons, ic)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query icons: %w", err)
	}
	return icons, nil
}

// Stats counts rows per entity type.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		TokensByCategory:     make(map[string]int),
		ComponentsByCategory: make(map[string]int),
	}
	counts := []struct {
		table string
		dst   *int
	}{
		{"tokens", &st.Tokens},
		{"token_properties", &st.TokenProperties},
		{"components", &st.Components},
		{"component_props", &st.Props},
		{"component_slots", &st.Slots},
		{"component_events", &st.Events},
		{"component_examples", &st.Examples},
		{"component_css_classes", &st.CSSClasses},
		{"css_utilities", &st.CSSUtilities},
		{"utility_classes", &st.UtilityClasses},
		{"documentation", &st.Documentation},
		{"icons", &st.Icons},
	}
	for _, c := range counts {
		n, err := countRows(ctx, s.db, c.table)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	groups := []struct {
		table string
		dst   map[string]int
	}{
		{"tokens", st.TokensByCategory},
		{"components", st.ComponentsByCategory},
	}
	for _, g := range groups {
		err := s.eachRow(ctx, sq.Select("category", "COUNT(*)").From(g.table).GroupBy("category"),
			func(rows *sql.Rows) error {
				var (
					category string
					n        int
				)
				if err := rows.Scan(&category, &n); err != nil {
					return err
				}
				g.dst[category] = n
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s by category: %w", g.table, err)
		}
	}
	return st, nil
}

// Metadata returns every index_metadata entry.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	meta := make(map[string]string)
	err := s.eachRow(ctx, sq.Select("key", "value").From("index_metadata"), func(rows *sql.Rows) error {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		meta[k] = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	return meta, nil
}

func (s *Store) eachRow(ctx context.Context, q sq.SelectBuilder, fn func(rows *sql.Rows) error) error {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func countRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := sq.Select("COUNT(*)").From(table).RunWith(db).QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func checkSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: empty search query", ErrInvalidQuery)
	}
	return nil
}

func searchLimit(limit int) uint64 {
	if limit <= 0 {
		return DefaultSearchLimit
	}
	return uint64(limit)
}

// ftsErrorMarkers identify errors caused by the MATCH expression itself
// rather than the database.
var ftsErrorMarkers = []string{"fts5", "syntax error", "unterminated string", "no such column", "unknown special query"}

func classifyQueryError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range ftsErrorMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
	}
	return err
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func decodeStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", raw, err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
