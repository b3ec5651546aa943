package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/pkg/logger"
)

// sourceCatalog names the unfiltered catalog as a fallback source
const sourceCatalog = "catalog"

// Name patterns used by the area filter
var (
	bodyNamePattern     = regexp.MustCompile(`(?i)body`)
	intimateNamePattern = regexp.MustCompile(`(?i)intimate|feminine`)
)

// filterStage is one narrowing step of the builder pipeline. When the
// filter empties the candidate set, the output of the stage named by
// fallbackFrom is used instead. Stages without fallbackFrom keep an empty
// result and report it as a warning.
type filterStage struct {
	name         string
	filter       func(candidates []domain.Product) []domain.Product
	fallbackFrom string
	emptyWarning string
}

// RoutineBuilderConfig holds configuration for the routine builder
type RoutineBuilderConfig struct {
	SensitivityPolicy  SensitivityPolicy
	Matcher            ConcernMatcherConfig
	Steps              StepSelectorConfig
	EnableDebugLogging bool
}

// RoutineBuilder narrows the catalog through area, safety, skin type, and
// concern stages and then picks one product per routine step
type RoutineBuilder struct {
	safety             *SafetyFilter
	matcher            *ConcernMatcher
	selector           *StepSelector
	log                *logger.Logger
	enableDebugLogging bool
}

// NewRoutineBuilder creates a routine builder. The tie-breaker decides
// between equally ranked products.
func NewRoutineBuilder(config RoutineBuilderConfig, tieBreaker TieBreaker, log *logger.Logger) *RoutineBuilder {
	matcher := NewConcernMatcher(config.Matcher)
	return &RoutineBuilder{
		safety:             NewSafetyFilter(config.SensitivityPolicy),
		matcher:            matcher,
		selector:           NewStepSelector(config.Steps, matcher, tieBreaker),
		log:                logger.OrNop(log).With("component", "routine_builder"),
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Safety returns the builder's safety filter
func (b *RoutineBuilder) Safety() *SafetyFilter {
	return b.safety
}

// Matcher returns the builder's concern matcher
func (b *RoutineBuilder) Matcher() *ConcernMatcher {
	return b.matcher
}

// EffectiveConcerns returns the profile's concerns, or the implicit concern
// for its skin type when none were selected
func EffectiveConcerns(profile *domain.UserProfile) []domain.Concern {
	if len(profile.Concerns) > 0 {
		return append([]domain.Concern(nil), profile.Concerns...)
	}
	return []domain.Concern{ImplicitConcern(profile.SkinType)}
}

// Build assembles a routine for the profile from the given products.
// Every step is always present: either a catalog pick or its fallback text.
func (b *RoutineBuilder) Build(products []domain.Product, profile domain.UserProfile) *domain.Routine {
	concerns := EffectiveConcerns(&profile)

	candidates, trace, warnings := b.runPipeline(b.stages(&profile, concerns), products)

	routine := &domain.Routine{
		Area:      profile.Area,
		Concerns:  concerns,
		Trace:     trace,
		Warnings:  warnings,
		Steps:     make([]domain.StepResult, 0, len(domain.RoutineSteps)),
		CreatedAt: time.Now().UTC(),
	}
	for _, step := range domain.RoutineSteps {
		routine.Steps = append(routine.Steps, b.selector.Pick(candidates, step, profile.IsSensitive, concerns))
	}

	if b.enableDebugLogging {
		b.log.Debug("routine built",
			"area", profile.Area,
			"skin_type", profile.SkinType,
			"concerns", concerns,
			"candidates", len(candidates),
			"trace", trace,
		)
	}

	return routine
}

// stages lists the pipeline in order for a profile
func (b *RoutineBuilder) stages(profile *domain.UserProfile, concerns []domain.Concern) []filterStage {
	return []filterStage{
		{
			name:         domain.StageArea,
			filter:       func(in []domain.Product) []domain.Product { return filterByArea(in, profile.Area) },
			fallbackFrom: sourceCatalog,
			emptyWarning: fmt.Sprintf("No %s products found; showing products for every area.", strings.ToLower(string(profile.Area))),
		},
		{
			name:         domain.StageSafety,
			filter:       func(in []domain.Product) []domain.Product { return b.safety.Filter(in, profile) },
			emptyWarning: "No products in the catalog are safe for your profile.",
		},
		{
			name:         domain.StageSkinType,
			filter:       func(in []domain.Product) []domain.Product { return filterBySkinType(in, profile.SkinType) },
			fallbackFrom: domain.StageSafety,
			emptyWarning: fmt.Sprintf("No products are listed for %s skin; skin type restriction skipped.", strings.ToLower(string(profile.SkinType))),
		},
		{
			name:         domain.StageConcern,
			filter:       func(in []domain.Product) []domain.Product { return b.matcher.Match(in, concerns) },
			fallbackFrom: domain.StageSkinType,
			emptyWarning: "No products target your selected concerns; showing all suitable products.",
		},
	}
}

// runPipeline applies the stages in order and records what each did
func (b *RoutineBuilder) runPipeline(stages []filterStage, products []domain.Product) ([]domain.Product, []domain.StageReport, []string) {
	outputs := map[string][]domain.Product{sourceCatalog: products}
	trace := make([]domain.StageReport, 0, len(stages))
	var warnings []string

	current := products
	for _, st := range stages {
		next := st.filter(current)
		report := domain.StageReport{
			Stage:  st.name,
			Before: len(current),
			After:  len(next),
		}

		// An already-empty input is not this stage's doing
		if len(next) == 0 && len(current) > 0 {
			if st.fallbackFrom != "" {
				next = outputs[st.fallbackFrom]
				report.FellBack = true
			}
			if st.emptyWarning != "" {
				warnings = append(warnings, st.emptyWarning)
			}
		}

		report.Result = len(next)
		trace = append(trace, report)
		outputs[st.name] = next
		current = next
	}

	return current, trace, warnings
}

// filterByArea restricts products to the shopping area by name
func filterByArea(products []domain.Product, area domain.Area) []domain.Product {
	switch area {
	case domain.AreaFace:
		return filterProducts(products, func(p *domain.Product) bool {
			return !bodyNamePattern.MatchString(p.Name) && !intimateNamePattern.MatchString(p.Name)
		})
	case domain.AreaBody:
		return filterProducts(products, func(p *domain.Product) bool {
			return bodyNamePattern.MatchString(p.Name)
		})
	default:
		return append([]domain.Product(nil), products...)
	}
}

// skinTypeTags returns the suitable_skin_types tags accepted for a skin type
func skinTypeTags(skinType domain.SkinType) []string {
	switch skinType {
	case domain.SkinOily:
		return []string{"all", "oily", "acne-prone"}
	case domain.SkinDry:
		return []string{"all", "dry"}
	default:
		return []string{"all"}
	}
}

// filterBySkinType keeps products listing the skin type (or "All").
// Products without a skin type listing are kept.
func filterBySkinType(products []domain.Product, skinType domain.SkinType) []domain.Product {
	tags := skinTypeTags(skinType)
	return filterProducts(products, func(p *domain.Product) bool {
		listed := strings.ToLower(strings.TrimSpace(p.SuitableSkinTypes))
		return listed == "" || containsAny(listed, tags)
	})
}
