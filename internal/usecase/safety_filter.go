package usecase

import (
	"fmt"
	"strings"

	"github.com/skinlens/backend/internal/domain"
)

// SensitivityPolicy decides which safe_for_sensitive values a sensitive
// user tolerates
type SensitivityPolicy string

const (
	// SensitivityStrict accepts only "Yes"
	SensitivityStrict SensitivityPolicy = "strict"
	// SensitivityPermissive accepts "Yes" and "Yes with caution"
	SensitivityPermissive SensitivityPolicy = "permissive"
)

// ParseSensitivityPolicy validates a configured policy name
func ParseSensitivityPolicy(s string) (SensitivityPolicy, error) {
	switch SensitivityPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SensitivityStrict:
		return SensitivityStrict, nil
	case SensitivityPermissive:
		return SensitivityPermissive, nil
	}
	return "", fmt.Errorf("sensitivity policy must be 'strict' or 'permissive', got: %s", s)
}

// SafetyFilter excludes products that are hazardous for a profile
type SafetyFilter struct {
	policy SensitivityPolicy
}

// NewSafetyFilter creates a safety filter. Unknown policies fall back to strict.
func NewSafetyFilter(policy SensitivityPolicy) *SafetyFilter {
	if policy != SensitivityPermissive {
		policy = SensitivityStrict
	}
	return &SafetyFilter{policy: policy}
}

// Policy returns the active sensitivity policy
func (f *SafetyFilter) Policy() SensitivityPolicy {
	return f.policy
}

// IsSafe reports whether a product passes every hazard rule for the profile.
// Each rule only excludes, so the order they run in does not matter.
func (f *SafetyFilter) IsSafe(p *domain.Product, profile *domain.UserProfile) bool {
	if p == nil || profile == nil {
		return false
	}

	retinol := domain.IsYes(p.ContainsRetinol)

	if profile.IsPregnant && (retinol || domain.IsYes(p.PrescriptionOnly)) {
		return false
	}
	if profile.UsingPrescription && (retinol || domain.IsYes(p.ContainsAcid)) {
		return false
	}
	if profile.IsSensitive && !f.ToleratedBySensitive(p.SafeForSensitive) {
		return false
	}
	return true
}

// ToleratedBySensitive applies the policy to a safe_for_sensitive value.
// Blank or garbled values are never tolerated.
func (f *SafetyFilter) ToleratedBySensitive(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "yes" {
		return true
	}
	return f.policy == SensitivityPermissive && strings.HasPrefix(v, "yes") && isCaution(v)
}

// Filter returns the products that are safe for the profile
func (f *SafetyFilter) Filter(products []domain.Product, profile *domain.UserProfile) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		if f.IsSafe(&products[i], profile) {
			out = append(out, products[i])
		}
	}
	return out
}

// isCaution reports whether a sensitivity value signals conditional tolerance
func isCaution(value string) bool {
	return strings.Contains(strings.ToLower(value), "caution")
}

// isFullySafeForSensitive reports an unconditional "Yes"
func isFullySafeForSensitive(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "yes")
}
