package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/metrics"
	"github.com/skinlens/backend/internal/pkg/logger"
)

// Gate names used in metrics and logs
const (
	gateConsultDoctor        = "consult_doctor"
	gateProfessionalGuidance = "professional_guidance"
)

// defaultMaxSensitiveConcerns is the most concerns a sensitive user may
// select before the professional guidance gate applies
const defaultMaxSensitiveConcerns = 2

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	Builder RoutineBuilderConfig
	// Seed seeds the tie-breaker; zero seeds from the clock
	Seed int64
	// MaxSensitiveConcerns overrides the sensitive-user concern limit
	MaxSensitiveConcerns int
}

// RecommendationService gates routine requests and builds routines from
// the current catalog snapshot
type RecommendationService struct {
	catalog              domain.CatalogRepository
	builder              *RoutineBuilder
	maxSensitiveConcerns int
	log                  *logger.Logger
}

// NewRecommendationService creates a new recommendation service with dependencies
func NewRecommendationService(
	catalog domain.CatalogRepository,
	config RecommendationServiceConfig,
	log *logger.Logger,
) *RecommendationService {
	return NewRecommendationServiceWithTieBreaker(catalog, config, NewRandomTieBreaker(config.Seed), log)
}

// NewRecommendationServiceWithTieBreaker creates a recommendation service
// with an explicit tie-breaker
func NewRecommendationServiceWithTieBreaker(
	catalog domain.CatalogRepository,
	config RecommendationServiceConfig,
	tieBreaker TieBreaker,
	log *logger.Logger,
) *RecommendationService {
	maxConcerns := config.MaxSensitiveConcerns
	if maxConcerns <= 0 {
		maxConcerns = defaultMaxSensitiveConcerns
	}

	log = logger.OrNop(log)
	return &RecommendationService{
		catalog:              catalog,
		builder:              NewRoutineBuilder(config.Builder, tieBreaker, log),
		maxSensitiveConcerns: maxConcerns,
		log:                  log.With("component", "recommendation_service"),
	}
}

// Gate checks the hard pre-conditions that suppress routine generation.
// It returns the advisory and gate name when one applies.
func (s *RecommendationService) Gate(profile *domain.UserProfile) (advisory string, gate string, gated bool) {
	if profile.IsPregnant || profile.UsingPrescription {
		return domain.AdvisoryConsultDoctor, gateConsultDoctor, true
	}
	if profile.IsSensitive && len(profile.Concerns) > s.maxSensitiveConcerns {
		return domain.AdvisoryProfessionalGuidance, gateProfessionalGuidance, true
	}
	return "", "", false
}

// Recommend handles a routine request.
// Flow: validate -> gate -> snapshot catalog -> build routine (-> body variant)
func (s *RecommendationService) Recommend(
	ctx context.Context,
	request *domain.RoutineRequest,
) (*domain.Recommendation, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}
	return s.RecommendProfile(ctx, request.Profile(), request.IncludeBodyMatch)
}

// RecommendProfile builds a recommendation for a profile. includeBody adds
// a matching body routine when the profile shops for the face.
func (s *RecommendationService) RecommendProfile(
	ctx context.Context,
	profile domain.UserProfile,
	includeBody bool,
) (*domain.Recommendation, error) {
	if err := validateProfile(&profile); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := &domain.Recommendation{ID: uuid.NewString()}

	if advisory, gate, gated := s.Gate(&profile); gated {
		metrics.RoutineGates.WithLabelValues(gate).Inc()
		s.log.Info("routine gated", "recommendation_id", rec.ID, "gate", gate)
		rec.Gated = true
		rec.Advisory = advisory
		return rec, nil
	}

	catalog, err := s.catalog.Current()
	if err != nil {
		return nil, err
	}
	rec.CatalogVersion = catalog.Version

	rec.Routine = s.build(catalog, profile)
	if includeBody && profile.Area == domain.AreaFace {
		rec.BodyRoutine = s.build(catalog, profile.WithArea(domain.AreaBody))
	}
	rec.Tip = domain.RoutineTip
	rec.NextGoals = append([]string(nil), domain.NextGoals...)

	s.log.Info("routine recommended",
		"recommendation_id", rec.ID,
		"catalog_version", catalog.Version,
		"skin_type", profile.SkinType,
		"area", profile.Area,
		"warnings", len(rec.Routine.Warnings),
	)

	return rec, nil
}

// build runs the routine builder and records its diagnostics
func (s *RecommendationService) build(catalog *domain.Catalog, profile domain.UserProfile) *domain.Routine {
	start := time.Now()
	routine := s.builder.Build(catalog.Products, profile)
	metrics.RoutineBuildDuration.Observe(time.Since(start).Seconds())
	metrics.RoutinesBuilt.WithLabelValues(string(profile.Area)).Inc()

	for _, stage := range routine.Trace {
		if stage.FellBack {
			metrics.StageFallbacks.WithLabelValues(stage.Stage).Inc()
		}
	}
	for _, step := range routine.Steps {
		if !step.HasProduct() {
			metrics.StepFallbacks.WithLabelValues(string(step.Step)).Inc()
		}
	}
	for _, w := range routine.Warnings {
		s.log.Warn("routine stage warning", "area", profile.Area, "warning", w)
	}

	return routine
}

// validateProfile rejects profiles with values outside the supported enums
func validateProfile(profile *domain.UserProfile) error {
	switch profile.SkinType {
	case domain.SkinOily, domain.SkinDry, domain.SkinCombination, domain.SkinNormal:
	default:
		return domain.ErrInvalidRequest
	}
	switch profile.Area {
	case domain.AreaFace, domain.AreaBody, domain.AreaBoth:
	default:
		return domain.ErrInvalidRequest
	}
	return nil
}
