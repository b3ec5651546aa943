package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/metrics"
	"github.com/skinlens/backend/internal/pkg/logger"
)

// Store holds the current catalog snapshot. Readers get an immutable
// snapshot; loads swap it atomically and a failed load keeps the previous one.
type Store struct {
	parser  *Parser
	source  domain.CatalogSource
	current atomic.Pointer[domain.Catalog]
	loadMu  sync.Mutex
	log     *logger.Logger
}

// NewStore creates a catalog store. source may be nil when the catalog is
// only ever uploaded.
func NewStore(parser *Parser, source domain.CatalogSource, log *logger.Logger) *Store {
	if parser == nil {
		parser = NewParser(ParserConfig{})
	}
	return &Store{
		parser: parser,
		source: source,
		log:    logger.OrNop(log).With("component", "catalog_store"),
	}
}

// Current returns the current snapshot
func (s *Store) Current() (*domain.Catalog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	return c, nil
}

// Reload reads the catalog again from the configured source
func (s *Store) Reload(ctx context.Context) (*domain.CatalogLoadReport, error) {
	if s.source == nil {
		return nil, domain.ErrNoCatalogSource
	}

	rc, err := s.source.Open(ctx)
	if err != nil {
		metrics.RecordCatalogLoad(0, 0, err)
		return nil, fmt.Errorf("could not open catalog %s: %w", s.source.Describe(), err)
	}
	defer rc.Close()

	return s.Replace(ctx, s.source.Describe(), rc)
}

// Replace parses r and, on success, makes it the current snapshot
func (s *Store) Replace(ctx context.Context, source string, r io.Reader) (*domain.CatalogLoadReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	catalog, report, err := s.parser.Parse(r, source)
	if err != nil {
		metrics.RecordCatalogLoad(0, 0, err)
		s.log.Error("catalog load failed", "source", source, "error", err)
		return report, err
	}

	s.current.Store(catalog)
	metrics.RecordCatalogLoad(report.RowsLoaded, report.RowsSkipped, nil)

	for _, w := range report.Warnings {
		s.log.Warn("catalog row skipped", "source", source, "detail", w)
	}
	s.log.Info("catalog loaded",
		"source", source,
		"version", report.Version,
		"products", report.RowsLoaded,
		"skipped", report.RowsSkipped,
	)
	return report, nil
}

// FileSource reads the catalog from a local file
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Open opens the file
func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Describe names the source
func (f *FileSource) Describe() string {
	return "file:" + f.Path
}
