// Package check runs the Revit separation rules over C# source trees:
// discovery, concurrent parsing, binding and concurrent analysis.
package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/revitlint/internal/analyzer"
	"github.com/phobologic/revitlint/internal/discover"
	"github.com/phobologic/revitlint/internal/lang"
	"github.com/phobologic/revitlint/internal/model"
	"github.com/phobologic/revitlint/internal/parse"
	"github.com/phobologic/revitlint/internal/semantic"
	"github.com/phobologic/revitlint/internal/syntax"
)

// DefaultMaxFileSize is the default per-file size limit in bytes.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// ErrNoSourceFiles is returned when no analyzable source file is found.
var ErrNoSourceFiles = errors.New("no C# source files found")

// Options configures a run. The zero value is usable.
type Options struct {
	// Exclude holds gitignore-style patterns applied during discovery.
	Exclude []string
	// References are catalogs consulted in addition to the default one.
	References []*semantic.Catalog
	// MaxFileSize skips larger files; 0 means DefaultMaxFileSize, negative
	// disables the limit.
	MaxFileSize int64
	// Concurrency bounds parse workers and analysis goroutines;
	// 0 means GOMAXPROCS.
	Concurrency int
	Logger      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) workers(n int) int {
	w := o.Concurrency
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Source is one file scheduled for analysis.
type Source struct {
	// Abs is the absolute path used for reading.
	Abs string
	// Path is the display path: relative to the directory argument it was
	// discovered under, or the file argument as given.
	Path      string
	Language  string
	Generated bool
}

// Result is the outcome of a run.
type Result struct {
	Diagnostics []model.Diagnostic
	// Files is the number of files parsed.
	Files int
	// Declarations is the number of class and record declarations analyzed.
	Declarations int
	// Skipped lists display paths of files that were not parsed.
	Skipped []string
}

// CountByRule returns the number of diagnostics per rule ID.
func (r *Result) CountByRule() map[string]int {
	counts := make(map[string]int)
	for _, d := range r.Diagnostics {
		counts[d.RuleID]++
	}
	return counts
}

// Collect expands path arguments into sources. Directories are searched with
// discover; files are taken as given when their extension is supported.
func Collect(paths []string, exclude []string) ([]Source, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var sources []Source
	seen := make(map[string]struct{})
	add := func(s Source) {
		if _, dup := seen[s.Abs]; dup {
			return
		}
		seen[s.Abs] = struct{}{}
		sources = append(sources, s)
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("path %s: %w", p, err)
		}

		if !info.IsDir() {
			langName := lang.ForExtension(filepath.Ext(abs))
			if langName == "" {
				return nil, fmt.Errorf("%s: not a C# source file", p)
			}
			add(Source{
				Abs:       abs,
				Path:      filepath.Clean(p),
				Language:  langName,
				Generated: lang.Languages[langName].IsGeneratedName(filepath.Base(abs)),
			})
			continue
		}

		entries, err := discover.Files(abs, discover.Options{Exclude: exclude})
		if err != nil {
			return nil, fmt.Errorf("discovering files in %s: %w", p, err)
		}
		for _, e := range entries {
			add(Source{
				Abs:       filepath.Join(abs, e.Path),
				Path:      displayPath(p, e.Path),
				Language:  e.Language,
				Generated: e.Generated,
			})
		}
	}
	return sources, nil
}

func displayPath(arg, rel string) string {
	if c := filepath.Clean(arg); c != "." {
		return filepath.Join(c, rel)
	}
	return rel
}

// Run analyzes every source file under paths.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	sources, err := Collect(paths, opts.Exclude)
	if err != nil {
		return nil, err
	}
	return RunSources(ctx, sources, opts)
}

// RunSources analyzes an already collected source list.
func RunSources(ctx context.Context, sources []Source, opts Options) (*Result, error) {
	log := opts.logger()
	if len(sources) == 0 {
		return nil, ErrNoSourceFiles
	}

	res := &Result{}
	kept, skipped := filterBySize(sources, opts.MaxFileSize, log)
	res.Skipped = append(res.Skipped, skipped...)
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w (all exceeded size limit)", ErrNoSourceFiles)
	}

	files, failed, err := parseFilesConcurrent(ctx, kept, opts.workers(len(kept)), log)
	if err != nil {
		return nil, err
	}
	res.Skipped = append(res.Skipped, failed...)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w (no file could be parsed)", ErrNoSourceFiles)
	}
	res.Files = len(files)

	catalogs := make([]*semantic.Catalog, 0, len(opts.References)+1)
	def, err := semantic.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	catalogs = append(catalogs, def)
	catalogs = append(catalogs, opts.References...)
	comp := semantic.NewCompilation(files, catalogs...)

	var (
		sink  analyzer.Collector
		mu    sync.Mutex
		decls int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers(len(files)))
	for _, f := range files {
		if f.Generated {
			log.Debug("skipping generated file", "path", f.Path)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n := 0
			for _, d := range f.Types {
				if !analyzer.Analyzable(d) {
					continue
				}
				n++
				analyzer.AnalyzeInto(d, comp, &sink)
			}
			mu.Lock()
			decls += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing: %w", err)
	}

	res.Declarations = decls
	res.Diagnostics = sink.Sorted()
	log.Debug("analysis complete",
		"files", res.Files,
		"declarations", res.Declarations,
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

func filterBySize(sources []Source, maxSize int64, log *slog.Logger) (kept []Source, skipped []string) {
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}
	for _, s := range sources {
		if maxSize < 0 {
			kept = append(kept, s)
			continue
		}
		fi, err := os.Stat(s.Abs)
		if err != nil {
			kept = append(kept, s) // keep if can't stat
			continue
		}
		if fi.Size() > maxSize {
			log.Warn("file skipped", "path", s.Path, "size", fi.Size(), "limit", maxSize)
			skipped = append(skipped, s.Path)
			continue
		}
		kept = append(kept, s)
	}
	return kept, skipped
}

func parseFilesConcurrent(ctx context.Context, sources []Source, numWorkers int, log *slog.Logger) ([]*syntax.File, []string, error) {
	type result struct {
		index int
		file  *syntax.File
	}

	work := make(chan int, len(sources))
	results := make(chan result, len(sources))

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			parsers := make(map[string]*parserPair)

			for idx := range work {
				if ctx.Err() != nil {
					continue
				}
				s := sources[idx]
				pp, ok := parsers[s.Language]
				if !ok {
					l := lang.Languages[s.Language]
					pp = &parserPair{lang: l, parser: l.NewParser()}
					parsers[s.Language] = pp
				}

				source, err := os.ReadFile(s.Abs)
				if err != nil {
					log.Warn("failed to read file", "path", s.Path, "error", err)
					continue
				}

				f, err := parse.File(ctx, pp.lang, pp.parser, source, filepath.ToSlash(s.Path))
				if err != nil {
					log.Warn("failed to parse file", "path", s.Path, "error", err)
					continue
				}
				f.Generated = f.Generated || s.Generated
				results <- result{index: idx, file: f}
			}
		}()
	}

	for i := range sources {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*syntax.File, len(sources))
	for r := range results {
		indexed[r.index] = r.file
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("parsing: %w", err)
	}

	var files []*syntax.File
	var failed []string
	for i, f := range indexed {
		if f == nil {
			failed = append(failed, sources[i].Path)
			continue
		}
		files = append(files, f)
	}
	return files, failed, nil
}

type parserPair struct {
	lang   *lang.Language
	parser *sitter.Parser
}
