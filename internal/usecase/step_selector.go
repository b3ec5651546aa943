package usecase

import (
	"fmt"
	"strings"

	"github.com/skinlens/backend/internal/domain"
)

// DefaultStepLabels maps each step to the category labels that identify it.
// A product belongs to a step when its category contains one of the labels.
var DefaultStepLabels = map[domain.Step][]string{
	domain.StepCleanse:    {"cleanse", "cleanser", "cleansing", "face wash"},
	domain.StepTone:       {"tone", "toner", "exfoliate", "exfoliant", "essence", "mist"},
	domain.StepTreat:      {"treat", "treatment", "serum", "ampoule"},
	domain.StepMoisturize: {"moistur", "hydrator"},
	domain.StepProtect:    {"protect", "sunscreen", "spf", "sun care"},
}

// DefaultStepKeywords identifies step products by name or notes when no
// product in the candidate set carries a matching category label
var DefaultStepKeywords = map[domain.Step][]string{
	domain.StepCleanse:    {"cleanser", "wash", "foam", "cleansing", "micellar"},
	domain.StepTone:       {"toner", "tonic", "mist", "essence", "exfoliat"},
	domain.StepTreat:      {"serum", "ampoule", "treatment", "spot", "concentrate"},
	domain.StepMoisturize: {"moisturi", "cream", "lotion", "balm", "emulsion"},
	domain.StepProtect:    {"spf", "sunscreen", "sun screen", "sunblock", "uv"},
}

// StepSelectorConfig holds configuration for the step selector
type StepSelectorConfig struct {
	// Labels overrides DefaultStepLabels per step
	Labels map[domain.Step][]string
	// Keywords overrides DefaultStepKeywords per step
	Keywords map[domain.Step][]string
	// Fallbacks overrides domain.StepFallbacks per step
	Fallbacks map[domain.Step]string
}

// StepSelector picks one product for a routine step
type StepSelector struct {
	labels     map[domain.Step][]string
	keywords   map[domain.Step][]string
	fallbacks  map[domain.Step]string
	matcher    *ConcernMatcher
	tieBreaker TieBreaker
}

// NewStepSelector creates a step selector. A nil tie-breaker keeps the
// first of the tied candidates.
func NewStepSelector(config StepSelectorConfig, matcher *ConcernMatcher, tieBreaker TieBreaker) *StepSelector {
	if matcher == nil {
		matcher = NewConcernMatcher(ConcernMatcherConfig{})
	}
	if tieBreaker == nil {
		tieBreaker = FirstTieBreaker{}
	}

	return &StepSelector{
		labels:     mergeStepTable(DefaultStepLabels, config.Labels),
		keywords:   mergeStepTable(DefaultStepKeywords, config.Keywords),
		fallbacks:  mergeFallbacks(config.Fallbacks),
		matcher:    matcher,
		tieBreaker: tieBreaker,
	}
}

// Fallback returns the advisory text for a step without a product
func (s *StepSelector) Fallback(step domain.Step) string {
	return s.fallbacks[step]
}

// Narrow restricts candidates to the step: by category label, then by
// name/notes keyword, then the whole input as a last resort
func (s *StepSelector) Narrow(candidates []domain.Product, step domain.Step) []domain.Product {
	if pool := filterContaining(candidates, s.labels[step], func(p *domain.Product) string {
		return p.Step
	}); len(pool) > 0 {
		return pool
	}
	if pool := filterContaining(candidates, s.keywords[step], func(p *domain.Product) string {
		return p.Name + " | " + p.Notes
	}); len(pool) > 0 {
		return pool
	}
	return candidates
}

// Pick selects a product for the step. With concerns, only the highest
// scoring candidates stay in the running; remaining ties go to the
// tie-breaker. An empty candidate set yields the step's fallback text.
func (s *StepSelector) Pick(
	candidates []domain.Product,
	step domain.Step,
	sensitive bool,
	concerns []domain.Concern,
) domain.StepResult {
	pool := s.Narrow(candidates, step)
	if len(pool) == 0 {
		return domain.StepResult{
			Step:    step,
			Details: s.fallbacks[step],
		}
	}

	top, score := s.topScored(pool, concerns)

	if sensitive {
		if safe := filterProducts(top, func(p *domain.Product) bool {
			return isFullySafeForSensitive(p.SafeForSensitive)
		}); len(safe) > 0 {
			top = safe
		}
	}

	idx := s.tieBreaker.Choose(len(top))
	if idx < 0 || idx >= len(top) {
		idx = 0
	}
	chosen := top[idx]

	id := chosen.ID
	result := domain.StepResult{
		Step:            step,
		ProductID:       &id,
		ProductName:     chosen.Name,
		RecommendedTime: chosen.UsageTime(),
		MaxFrequency:    chosen.UsageFrequency(),
		Notes:           chosen.NotesOrDefault(),
		Caution:         sensitive && isCaution(chosen.SafeForSensitive),
		Score:           score,
		Candidates:      len(pool),
	}
	result.Details = renderDetails(&chosen, result.Caution)
	return result
}

// topScored keeps the candidates with the highest concern score
func (s *StepSelector) topScored(pool []domain.Product, concerns []domain.Concern) ([]domain.Product, int) {
	if len(concerns) == 0 {
		return pool, 0
	}

	best := -1
	var top []domain.Product
	for i := range pool {
		score := s.matcher.Score(&pool[i], concerns)
		switch {
		case score > best:
			best = score
			top = []domain.Product{pool[i]}
		case score == best:
			top = append(top, pool[i])
		}
	}
	return top, best
}

// renderDetails formats the product for display
func renderDetails(p *domain.Product, caution bool) string {
	details := fmt.Sprintf(
		"**%s — %s**  \n**Recommended time:** %s  \n**Max frequency:** %s  \n**Notes:** %s",
		p.ID, p.Name, p.UsageTime(), p.UsageFrequency(), p.NotesOrDefault(),
	)
	if caution {
		details += "  \n**Sensitive skin:** " + domain.SensitiveCautionNotice
	}
	return details
}

// filterContaining keeps products whose field contains any of the terms
func filterContaining(products []domain.Product, terms []string, field func(*domain.Product) string) []domain.Product {
	if len(terms) == 0 {
		return nil
	}
	return filterProducts(products, func(p *domain.Product) bool {
		return containsAny(strings.ToLower(field(p)), terms)
	})
}

func filterProducts(products []domain.Product, keep func(*domain.Product) bool) []domain.Product {
	var out []domain.Product
	for i := range products {
		if keep(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func mergeStepTable(defaults, overrides map[domain.Step][]string) map[domain.Step][]string {
	out := make(map[domain.Step][]string, len(defaults))
	for step, terms := range defaults {
		out[step] = lowerAll(terms)
	}
	for step, terms := range overrides {
		out[step] = lowerAll(terms)
	}
	return out
}

func mergeFallbacks(overrides map[domain.Step]string) map[domain.Step]string {
	out := make(map[domain.Step]string, len(domain.StepFallbacks))
	for step, text := range domain.StepFallbacks {
		out[step] = text
	}
	for step, text := range overrides {
		if strings.TrimSpace(text) != "" {
			out[step] = text
		}
	}
	return out
}
