package catalog

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/skinlens/backend/internal/domain"
)

// maxWarnings caps the warnings kept in a load report
const maxWarnings = 50

// Column names after header normalization
const (
	colID                = "id"
	colName              = "name"
	colStep              = "step"
	colPrimaryTarget     = "primary_target"
	colSecondaryTarget   = "secondary_target"
	colKeyActives        = "key_actives"
	colNotes             = "notes"
	colSuitableSkinTypes = "suitable_skin_types"
	colSafeForSensitive  = "safe_for_sensitive"
	colContainsRetinol   = "contains_retinol"
	colContainsAcid      = "contains_acid"
	colPrescriptionOnly  = "prescription_only"
	colRecommendedTime   = "recommended_time"
	colMaxFrequency      = "max_frequency"
)

// headerAliases maps alternative header spellings to column names
var headerAliases = map[string]string{
	"product_id":   colID,
	"sku":          colID,
	"product_name": colName,
	"category":     colStep,
	"routine_step": colStep,
	"skin_types":   colSuitableSkinTypes,
}

// ParserConfig holds configuration for the catalog parser
type ParserConfig struct {
	// Normalize cleans every free-text cell; nil leaves cells as read
	Normalize func(string) string
}

// Parser reads a product catalog from CSV
type Parser struct {
	normalize func(string) string
}

// NewParser creates a catalog parser
func NewParser(config ParserConfig) *Parser {
	normalize := config.Normalize
	if normalize == nil {
		normalize = strings.TrimSpace
	}
	return &Parser{normalize: normalize}
}

// Parse reads a CSV catalog. Malformed rows are skipped and reported as
// warnings. A missing id or name column fails the whole load, as does a
// file with no usable rows.
func (p *Parser) Parse(r io.Reader, source string) (*domain.Catalog, *domain.CatalogLoadReport, error) {
	hasher := sha256.New()
	reader := csv.NewReader(io.TeeReader(r, hasher))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: empty file", domain.ErrCatalogEmpty)
		}
		return nil, nil, fmt.Errorf("could not read catalog header: %w", err)
	}

	columns := indexColumns(header)
	for _, required := range []string{colID, colName} {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, required)
		}
	}

	report := &domain.CatalogLoadReport{Source: source}
	products := make([]domain.Product, 0, 64)
	seen := make(map[string]bool)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.RowsRead++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.RowsSkipped++
				addWarning(report, fmt.Sprintf("row %d: %v", line, parseErr.Err))
				continue
			}
			return nil, nil, fmt.Errorf("could not read catalog: %w", err)
		}

		if len(record) > len(header) {
			report.RowsSkipped++
			addWarning(report, fmt.Sprintf("row %d: expected %d fields, saw %d", line, len(header), len(record)))
			continue
		}

		product := p.buildProduct(record, columns)
		if !product.Usable() {
			report.RowsSkipped++
			addWarning(report, fmt.Sprintf("row %d: missing id or name", line))
			continue
		}
		if seen[product.ID] {
			report.RowsSkipped++
			addWarning(report, fmt.Sprintf("row %d: duplicate id %q", line, product.ID))
			continue
		}
		seen[product.ID] = true
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, report, domain.ErrCatalogEmpty
	}

	report.RowsLoaded = len(products)
	report.Version = hex.EncodeToString(hasher.Sum(nil))[:12]

	catalog := &domain.Catalog{
		Version:  report.Version,
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Products: products,
		Warnings: report.Warnings,
	}
	return catalog, report, nil
}

// buildProduct maps a record onto a product; absent cells stay blank
func (p *Parser) buildProduct(record []string, columns map[string]int) domain.Product {
	raw := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}
	cell := func(name string) string {
		return p.normalize(raw(name))
	}

	return domain.Product{
		ID:                strings.TrimSpace(raw(colID)),
		Name:              cell(colName),
		Step:              cell(colStep),
		PrimaryTarget:     cell(colPrimaryTarget),
		SecondaryTarget:   cell(colSecondaryTarget),
		KeyActives:        cell(colKeyActives),
		Notes:             cell(colNotes),
		SuitableSkinTypes: cell(colSuitableSkinTypes),
		SafeForSensitive:  cell(colSafeForSensitive),
		ContainsRetinol:   cell(colContainsRetinol),
		ContainsAcid:      cell(colContainsAcid),
		PrescriptionOnly:  cell(colPrescriptionOnly),
		RecommendedTime:   cell(colRecommendedTime),
		MaxFrequency:      cell(colMaxFrequency),
	}
}

// indexColumns maps normalized header names to their positions. The first
// occurrence of a column wins.
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}
	return columns
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func addWarning(report *domain.CatalogLoadReport, w string) {
	if len(report.Warnings) < maxWarnings {
		report.Warnings = append(report.Warnings, w)
	}
}
