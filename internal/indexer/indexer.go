package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/dsindex/internal/files"
	"github.com/mvp-joe/dsindex/internal/indexer/extraction"
	"github.com/mvp-joe/dsindex/internal/indexer/parsers"
	"github.com/mvp-joe/dsindex/internal/storage"
)

// Rebuild categories, in the order they run.
const (
	CategoryTokens        = "tokens"
	CategoryComponents    = "components"
	CategoryCSSUtilities  = "css-utilities"
	CategoryDocumentation = "documentation"
	CategoryIcons         = "icons"
)

// Categories lists every rebuild category in run order.
var Categories = []string{
	CategoryTokens,
	CategoryComponents,
	CategoryCSSUtilities,
	CategoryDocumentation,
	CategoryIcons,
}

// Rebuild modes.
const (
	// ModeStrict turns a missing source, or an empty mandatory category, into
	// a terminating error.
	ModeStrict = "strict"
	// ModeLenient substitutes the bundled dataset and carries on.
	ModeLenient = "lenient"
)

// Sources locates each artifact inside Config.FS. An empty entry disables
// that source.
type Sources struct {
	TokensDir string
	VueDir    string
	ReactDir  string
	DocsDir   string
	IconsFile string
}

// Config contains configuration for a rebuild.
type Config struct {
	// FS is the project root all Sources are relative to
	FS      fs.FS
	Sources Sources

	VuePrefix     string   // stripped from Vue component directory names
	ClassPrefixes []string // CSS class prefixes harvested from sources and docs

	Mode      string   // ModeStrict or ModeLenient
	Mandatory []string // categories whose empty result is an error

	StorePath string
	Store     storage.Options
	Replace   string // storage.ReplaceAtomic or storage.ReplaceEager
}

// DefaultMandatory are the categories a usable index cannot do without.
var DefaultMandatory = []string{CategoryTokens, CategoryComponents, CategoryDocumentation}

// RebuildStats summarizes one rebuild.
type RebuildStats struct {
	BuildID   string
	Mode      string
	Counts    map[string]int // records stored per category
	Fallbacks []string       // categories filled from the bundled dataset
	Duration  time.Duration
}

// Indexer extracts every artifact type and writes a fresh index.
// Extraction is sequential: one category at a time, fully materialized in
// memory, then written in one transaction.
type Indexer struct {
	cfg      Config
	progress ProgressReporter
	fallback *Fallback
}

// New creates an indexer. A nil progress reporter is replaced with a no-op.
func New(cfg Config, progress ProgressReporter) *Indexer {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLenient
	}
	if cfg.Mandatory == nil {
		cfg.Mandatory = DefaultMandatory
	}
	if len(cfg.ClassPrefixes) == 0 {
		cfg.ClassPrefixes = parsers.DefaultClassPrefixes
	}
	return &Indexer{cfg: cfg, progress: progress}
}

// Rebuild replaces the index at Config.StorePath wholesale, using the
// configured replace strategy.
func (idx *Indexer) Rebuild(ctx context.Context) (*RebuildStats, error) {
	var stats *RebuildStats
	err := storage.Build(ctx, idx.cfg.StorePath, idx.cfg.Store, idx.cfg.Replace, func(ctx context.Context, db *sql.DB) error {
		var err error
		stats, err = idx.Populate(ctx, db)
		return err
	})
	if err != nil {
		return nil, err
	}
	idx.progress.OnComplete(stats)
	return stats, nil
}

// Populate runs every category against db, which must already carry the
// schema. Each category commits on its own; the first category error stops
// the run and is returned as a *CategoryError.
func (idx *Indexer) Populate(ctx context.Context, db *sql.DB) (*RebuildStats, error) {
	start := time.Now()
	w := storage.NewWriter(db)
	stats := &RebuildStats{
		BuildID: uuid.NewString(),
		Mode:    idx.cfg.Mode,
		Counts:  make(map[string]int),
	}

	steps := []struct {
		category string
		run      func(context.Context, *storage.Writer) (int, bool, error)
	}{
		{CategoryTokens, idx.indexTokens},
		{CategoryComponents, idx.indexComponents},
		{CategoryCSSUtilities, idx.indexCSSUtilities},
		{CategoryDocumentation, idx.indexDocumentation},
		{CategoryIcons, idx.indexIcons},
	}

	idx.progress.OnRebuildStart(Categories)
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx.progress.OnCategoryStart(step.category)

		n, fromDefaults, err := step.run(ctx, w)
		if err != nil {
			var catErr *CategoryError
			if !errors.As(err, &catErr) {
				err = &CategoryError{Category: step.category, Err: err}
			}
			return nil, err
		}

		stats.Counts[step.category] = n
		if fromDefaults {
			stats.Fallbacks = append(stats.Fallbacks, step.category)
		}
		idx.progress.OnCategoryComplete(step.category, n, fromDefaults)
	}

	meta := [][2]string{
		{storage.MetaBuildID, stats.BuildID},
		{storage.MetaBuiltAt, time.Now().UTC().Format(time.RFC3339)},
		{storage.MetaMode, stats.Mode},
	}
	for _, kv := range meta {
		if err := w.SetMetadata(ctx, kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (idx *Indexer) indexTokens(ctx context.Context, w *storage.Writer) (int, bool, error) {
	dir := idx.cfg.Sources.TokensDir
	if dir == "" {
		return 0, false, nil
	}

	var tokens []extraction.Token
	var err error
	if !files.Exists(idx.cfg.FS, dir) {
		err = fmt.Errorf("tokens directory %s: %w", dir, fs.ErrNotExist)
	} else {
		tokens, err = parsers.NewTokenExtractor(idx.cfg.FS, dir).ExtractAll()
	}

	// The spacing scale is generated, so only sourced tokens count as a result.
	sourced := slices.ContainsFunc(tokens, func(t extraction.Token) bool {
		return t.Category != extraction.CategorySpacing
	})
	if err == nil && !sourced {
		tokens = nil
	}

	tokens, fromDefaults, err := resolve(idx, CategoryTokens, tokens, err, func(f *Fallback) []extraction.Token {
		return f.Tokens()
	})
	if err != nil {
		return 0, false, err
	}
	if tokens == nil {
		tokens = parsers.SpacingScale()
	}
	return len(tokens), fromDefaults, w.InsertTokens(ctx, tokens)
}

func (idx *Indexer) indexComponents(ctx context.Context, w *storage.Writer) (int, bool, error) {
	opts := parsers.ComponentOptions{Prefix: idx.cfg.VuePrefix, ClassPrefixes: idx.cfg.ClassPrefixes}
	var extractors []*parsers.ComponentExtractor
	if dir := idx.cfg.Sources.VueDir; dir != "" {
		extractors = append(extractors, parsers.NewVueExtractor(idx.cfg.FS, dir, opts))
	}
	if dir := idx.cfg.Sources.ReactDir; dir != "" {
		extractors = append(extractors, parsers.NewReactExtractor(idx.cfg.FS, dir, opts))
	}
	if len(extractors) == 0 {
		return 0, false, nil
	}

	var (
		lists   [][]extraction.Component
		missing []error
	)
	for _, ext := range extractors {
		list, err := ext.ExtractAll()
		if err != nil {
			if !files.IsNotExist(err) {
				return 0, false, err
			}
			// One framework may legitimately be absent while the other exists
			log.Printf("Warning: %s components not indexed: %v", ext.Framework(), err)
			missing = append(missing, err)
			continue
		}
		lists = append(lists, list)
	}

	var err error
	if len(missing) == len(extractors) {
		err = errors.Join(missing...)
	}
	components, fromDefaults, err := resolve(idx, CategoryComponents, parsers.MergeComponents(lists...), err,
		func(f *Fallback) []extraction.Component { return f.Components() })
	if err != nil {
		return 0, false, err
	}
	return len(components), fromDefaults, w.InsertComponents(ctx, components)
}

func (idx *Indexer) indexCSSUtilities(ctx context.Context, w *storage.Writer) (int, bool, error) {
	utilities := parsers.ExtractCSSUtilities(parsers.DefaultUtilityTables())
	return len(utilities), false, w.InsertCSSUtilities(ctx, utilities)
}

func (idx *Indexer) indexDocumentation(ctx context.Context, w *storage.Writer) (int, bool, error) {
	dir := idx.cfg.Sources.DocsDir
	if dir == "" {
		return 0, false, nil
	}
	docs, err := parsers.NewDocExtractor(idx.cfg.FS, dir, idx.cfg.ClassPrefixes).ExtractAll()
	docs, fromDefaults, err := resolve(idx, CategoryDocumentation, docs, err,
		func(f *Fallback) []extraction.Documentation { return f.Documentation() })
	if err != nil {
		return 0, false, err
	}
	return len(docs), fromDefaults, w.InsertDocumentation(ctx, docs)
}

func (idx *Indexer) indexIcons(ctx context.Context, w *storage.Writer) (int, bool, error) {
	file := idx.cfg.Sources.IconsFile
	if file == "" {
		return 0, false, nil
	}
	icons, err := parsers.NewIconExtractor(idx.cfg.FS, file).ExtractAll()
	icons, fromDefaults, err := resolve(idx, CategoryIcons, icons, err,
		func(f *Fallback) []extraction.Icon { return f.Icons() })
	if err != nil {
		return 0, false, err
	}
	return len(icons), fromDefaults, w.InsertIcons(ctx, icons)
}

// resolve applies the error policy to one category's extraction result.
// Missing sources and empty mandatory results are errors in strict mode and
// are replaced by the bundled dataset in lenient mode. Any other extraction
// error is returned as is.
func resolve[T any](idx *Indexer, category string, records []T, err error, bundled func(*Fallback) []T) ([]T, bool, error) {
	switch {
	case err != nil && files.IsNotExist(err):
		err = &CategoryError{Category: category, Err: fmt.Errorf("%w: %v", ErrMissingSource, err)}
	case err != nil:
		return nil, false, &CategoryError{Category: category, Err: err}
	case len(records) == 0 && slices.Contains(idx.cfg.Mandatory, category):
		err = &CategoryError{Category: category, Err: ErrEmptyResult}
	default:
		return records, false, nil
	}

	if idx.cfg.Mode == ModeStrict {
		return nil, false, err
	}

	f, ferr := idx.loadFallback()
	if ferr != nil {
		return nil, false, &CategoryError{Category: category, Err: errors.Join(err, ferr)}
	}
	log.Printf("Warning: %v; using bundled defaults", err)
	return bundled(f), true, nil
}

func (idx *Indexer) loadFallback() (*Fallback, error) {
	if idx.fallback != nil {
		return idx.fallback, nil
	}
	f, err := LoadFallback(idx.cfg.ClassPrefixes)
	if err != nil {
		return nil, err
	}
	idx.fallback = f
	return f, nil
}
