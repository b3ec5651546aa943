package domain

import (
	"strings"
	"time"
)

// Default usage guidance when a catalog row leaves the field blank
const (
	DefaultRecommendedTime = "Anytime"
	DefaultMaxFrequency    = "Daily"
	DefaultNotes           = "No extra notes"
)

// Product is one row of the skincare catalog
type Product struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Step              string `json:"step,omitempty"` // free-text category label, e.g. "Moisturizer / Hydrator"
	PrimaryTarget     string `json:"primaryTarget,omitempty"`
	SecondaryTarget   string `json:"secondaryTarget,omitempty"`
	KeyActives        string `json:"keyActives,omitempty"`
	Notes             string `json:"notes,omitempty"`
	SuitableSkinTypes string `json:"suitableSkinTypes,omitempty"`
	SafeForSensitive  string `json:"safeForSensitive,omitempty"` // "Yes", "Yes with caution", "No"
	ContainsRetinol   string `json:"containsRetinol,omitempty"`
	ContainsAcid      string `json:"containsAcid,omitempty"`
	PrescriptionOnly  string `json:"prescriptionOnly,omitempty"`
	RecommendedTime   string `json:"recommendedTime,omitempty"`
	MaxFrequency      string `json:"maxFrequency,omitempty"`
}

// Usable reports whether the row carries the two fields every stage depends on
func (p *Product) Usable() bool {
	return strings.TrimSpace(p.ID) != "" && strings.TrimSpace(p.Name) != ""
}

// UsageTime returns the recommended time or its default
func (p *Product) UsageTime() string {
	return valueOr(p.RecommendedTime, DefaultRecommendedTime)
}

// UsageFrequency returns the max frequency or its default
func (p *Product) UsageFrequency() string {
	return valueOr(p.MaxFrequency, DefaultMaxFrequency)
}

// NotesOrDefault returns the notes or a placeholder
func (p *Product) NotesOrDefault() string {
	return valueOr(p.Notes, DefaultNotes)
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// IsYes reports whether a boolean-like catalog flag is set.
// Anything other than "yes" (including blanks) counts as not set.
func IsYes(flag string) bool {
	return strings.EqualFold(strings.TrimSpace(flag), "yes")
}

// Catalog is an immutable snapshot of the product inventory
type Catalog struct {
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loadedAt"`
	Products []Product `json:"-"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Len returns the number of usable products
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}

// FindByID returns the product with the given id
func (c *Catalog) FindByID(id string) (*Product, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i], true
		}
	}
	return nil, false
}

// ProductSummary is the browse view of a product
type ProductSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	BestFor         string `json:"bestFor"`
	KeyIngredients  string `json:"keyIngredients"`
	RecommendedTime string `json:"recommendedTime"`
	MaxFrequency    string `json:"maxFrequency"`
	Notes           string `json:"notes"`
}

// Summarize builds the browse view with defaults applied
func (p *Product) Summarize() ProductSummary {
	return ProductSummary{
		ID:              p.ID,
		Name:            p.Name,
		BestFor:         p.PrimaryTarget,
		KeyIngredients:  p.KeyActives,
		RecommendedTime: p.UsageTime(),
		MaxFrequency:    p.UsageFrequency(),
		Notes:           p.NotesOrDefault(),
	}
}

// CatalogLoadReport summarizes a catalog load
type CatalogLoadReport struct {
	Version     string   `json:"version"`
	Source      string   `json:"source"`
	RowsRead    int      `json:"rowsRead"`
	RowsLoaded  int      `json:"rowsLoaded"`
	RowsSkipped int      `json:"rowsSkipped"`
	Warnings    []string `json:"warnings,omitempty"`
}
