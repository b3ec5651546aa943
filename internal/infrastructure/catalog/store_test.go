package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinlens/backend/internal/domain"
)

type stubSource struct {
	body string
	err  error
}

func (s *stubSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func (s *stubSource) Describe() string {
	return "stub"
}

func writeCatalogFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestStore_CurrentBeforeLoad(t *testing.T) {
	store := NewStore(nil, nil, nil)

	catalog, err := store.Current()

	assert.Nil(t, catalog)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestStore_ReloadWithoutSource(t *testing.T) {
	store := NewStore(nil, nil, nil)

	_, err := store.Reload(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoCatalogSource)
}

func TestStore_ReloadFromFile(t *testing.T) {
	path := writeCatalogFile(t, t.TempDir(), sampleCSV)
	store := NewStore(NewParser(ParserConfig{}), NewFileSource(path), nil)

	report, err := store.Reload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "file:"+path, report.Source)
	assert.Equal(t, 2, report.RowsLoaded)

	catalog, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, report.Version, catalog.Version)
	p, ok := catalog.FindByID("M1")
	require.True(t, ok)
	assert.Equal(t, "Barrier Cream", p.Name)
}

func TestStore_ReloadMissingFile(t *testing.T) {
	store := NewStore(nil, NewFileSource(filepath.Join(t.TempDir(), "absent.csv")), nil)

	_, err := store.Reload(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = store.Current()
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestStore_ReloadSourceError(t *testing.T) {
	sourceErr := errors.New("connection refused")
	store := NewStore(nil, &stubSource{err: sourceErr}, nil)

	_, err := store.Reload(context.Background())

	assert.ErrorIs(t, err, sourceErr)
	assert.Contains(t, err.Error(), "stub")
}

func TestStore_FailedReplaceKeepsSnapshot(t *testing.T) {
	store := NewStore(nil, nil, nil)
	ctx := context.Background()

	first, err := store.Replace(ctx, "upload:first.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "missing column", input: "sku_code,title\nA,B\n", wantErr: domain.ErrMissingColumn},
		{name: "no rows", input: "id,name\n", wantErr: domain.ErrCatalogEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Replace(ctx, "upload:broken.csv", strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)

			current, err := store.Current()
			require.NoError(t, err)
			assert.Equal(t, first.Version, current.Version)
			assert.Equal(t, "upload:first.csv", current.Source)
		})
	}
}

func TestStore_ReplaceSwapsSnapshot(t *testing.T) {
	store := NewStore(nil, &stubSource{body: sampleCSV}, nil)
	ctx := context.Background()

	_, err := store.Reload(ctx)
	require.NoError(t, err)
	before, err := store.Current()
	require.NoError(t, err)

	_, err = store.Replace(ctx, "upload:new.csv", strings.NewReader("id,name\nN1,New Serum\n"))
	require.NoError(t, err)
	after, err := store.Current()
	require.NoError(t, err)

	assert.Equal(t, 2, before.Len(), "earlier snapshots are never mutated")
	assert.Equal(t, 1, after.Len())
	assert.Equal(t, "upload:new.csv", after.Source)
}

func TestStore_ReplaceCancelledContext(t *testing.T) {
	store := NewStore(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Replace(ctx, "upload", strings.NewReader(sampleCSV))

	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Current()
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestStore_ConcurrentReadsDuringReload(t *testing.T) {
	store := NewStore(nil, &stubSource{body: sampleCSV}, nil)
	ctx := context.Background()
	_, err := store.Reload(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Reload(ctx)
		}()
		go func() {
			defer wg.Done()
			catalog, err := store.Current()
			assert.NoError(t, err)
			assert.Equal(t, 2, catalog.Len())
		}()
	}
	wg.Wait()
}

func TestFileSource_Describe(t *testing.T) {
	assert.Equal(t, "file:data/products.csv", NewFileSource("data/products.csv").Describe())
}
