package usecase

import (
	"strings"

	"github.com/skinlens/backend/internal/domain"
)

// DefaultConcernKeywords is the keyword table used to relate concerns to
// product targets and actives. Entries may be overridden from config.
var DefaultConcernKeywords = map[domain.Concern][]string{
	domain.ConcernAcne: {
		"acne", "blemish", "pore", "salicylic", "benzoyl", "breakout", "niacinamide", "oil control",
	},
	domain.ConcernDarkSpots: {
		"brightening", "even tone", "fade spots", "whitening", "hyperpigmentation", "dark spots",
		"melasma", "pigment", "arbutin", "kojic", "niacinamide", "vitamin c", "tranexamic",
		"azelaic", "licorice", "thiamidol",
	},
	domain.ConcernDryness: {
		"hydration", "hyaluronic", "moisturizing", "dryness", "ceramide",
	},
	domain.ConcernTexture: {
		"texture", "exfoliat", "resurfacing", "rough", "smooth", "glycolic", "lactic", "aha", "bha", "pha",
	},
	domain.ConcernAging: {
		"aging", "ageing", "fine lines", "wrinkle", "firming", "retinol", "retinal", "peptide",
		"collagen", "bakuchiol",
	},
	domain.ConcernSensitivity: {
		"sensitiv", "soothing", "calming", "redness", "irritation", "centella", "cica", "panthenol",
		"allantoin", "colloidal oat",
	},
	domain.ConcernDullness: {
		"dull", "glow", "radiance", "radiant", "brightening", "vitamin c",
	},
	domain.ConcernBarrierDamage: {
		"barrier", "ceramide", "repair", "squalane", "cholesterol", "fatty acid", "panthenol",
	},
}

// ImplicitConcern returns the concern assumed when the user picks none
func ImplicitConcern(skinType domain.SkinType) domain.Concern {
	switch skinType {
	case domain.SkinOily:
		return domain.ConcernAcne
	case domain.SkinDry:
		return domain.ConcernDryness
	default:
		return domain.ConcernDullness
	}
}

// ConcernMatcherConfig holds configuration for the concern matcher
type ConcernMatcherConfig struct {
	// Keywords overrides or extends DefaultConcernKeywords per concern
	Keywords map[domain.Concern][]string
	// IncludeNotes also scans the notes field when filtering
	IncludeNotes bool
}

// ConcernMatcher relates products to concerns through keyword lookups
type ConcernMatcher struct {
	keywords     map[domain.Concern][]string
	includeNotes bool
}

// NewConcernMatcher creates a concern matcher
func NewConcernMatcher(config ConcernMatcherConfig) *ConcernMatcher {
	keywords := make(map[domain.Concern][]string, len(DefaultConcernKeywords))
	for c, kws := range DefaultConcernKeywords {
		keywords[c] = lowerAll(kws)
	}
	for c, kws := range config.Keywords {
		keywords[c] = lowerAll(kws)
	}
	return &ConcernMatcher{
		keywords:     keywords,
		includeNotes: config.IncludeNotes,
	}
}

// Keywords returns the keyword list for a concern; unknown concerns have none
func (m *ConcernMatcher) Keywords(c domain.Concern) []string {
	return m.keywords[c]
}

// Matches reports whether a product is relevant to any of the concerns.
// Concerns without keywords add nothing; when none of the concerns has
// keywords, every product matches.
func (m *ConcernMatcher) Matches(p *domain.Product, concerns []domain.Concern) bool {
	text := m.filterText(p)
	known := false
	for _, c := range concerns {
		kws := m.keywords[c]
		if len(kws) == 0 {
			continue
		}
		known = true
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return !known
}

// Match returns the union of products matching any of the concerns.
// An empty concern list does not filter.
func (m *ConcernMatcher) Match(candidates []domain.Product, concerns []domain.Concern) []domain.Product {
	if len(concerns) == 0 {
		return append([]domain.Product(nil), candidates...)
	}
	out := make([]domain.Product, 0, len(candidates))
	for i := range candidates {
		if m.Matches(&candidates[i], concerns) {
			out = append(out, candidates[i])
		}
	}
	return out
}

// Score counts keyword occurrences for the concerns across target,
// actives, and notes fields
func (m *ConcernMatcher) Score(p *domain.Product, concerns []domain.Concern) int {
	text := scoreText(p)
	score := 0
	for _, c := range concerns {
		for _, kw := range m.keywords[c] {
			score += strings.Count(text, kw)
		}
	}
	return score
}

func (m *ConcernMatcher) filterText(p *domain.Product) string {
	fields := []string{p.PrimaryTarget, p.SecondaryTarget, p.KeyActives}
	if m.includeNotes {
		fields = append(fields, p.Notes)
	}
	return strings.ToLower(strings.Join(fields, " | "))
}

func scoreText(p *domain.Product) string {
	return strings.ToLower(strings.Join([]string{p.PrimaryTarget, p.SecondaryTarget, p.KeyActives, p.Notes}, " | "))
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
