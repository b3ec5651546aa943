package usecase

import (
	"testing"

	"github.com/skinlens/backend/internal/domain"
)

func TestParseSensitivityPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    SensitivityPolicy
		wantErr bool
	}{
		{"", SensitivityStrict, false},
		{"strict", SensitivityStrict, false},
		{" Permissive ", SensitivityPermissive, false},
		{"lenient", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSensitivityPolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSensitivityPolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSensitivityPolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafetyFilter_IsSafe(t *testing.T) {
	strict := NewSafetyFilter(SensitivityStrict)
	permissive := NewSafetyFilter(SensitivityPermissive)

	tests := []struct {
		name    string
		filter  *SafetyFilter
		product domain.Product
		profile domain.UserProfile
		want    bool
	}{
		{
			name:    "no flags is safe for anyone",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Plain"},
			profile: domain.UserProfile{SkinType: domain.SkinNormal},
			want:    true,
		},
		{
			name:    "pregnant excludes retinol",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Night", ContainsRetinol: "Yes"},
			profile: domain.UserProfile{IsPregnant: true},
			want:    false,
		},
		{
			name:    "pregnant excludes prescription-only",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Rx", PrescriptionOnly: "yes"},
			profile: domain.UserProfile{IsPregnant: true},
			want:    false,
		},
		{
			name:    "pregnant allows acids",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Toner", ContainsAcid: "Yes"},
			profile: domain.UserProfile{IsPregnant: true},
			want:    true,
		},
		{
			name:    "prescription user excludes retinol",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Night", ContainsRetinol: "Yes"},
			profile: domain.UserProfile{UsingPrescription: true},
			want:    false,
		},
		{
			name:    "prescription user excludes acids",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Toner", ContainsAcid: " YES "},
			profile: domain.UserProfile{UsingPrescription: true},
			want:    false,
		},
		{
			name:    "prescription user allows prescription-only products",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Rx", PrescriptionOnly: "Yes"},
			profile: domain.UserProfile{UsingPrescription: true},
			want:    true,
		},
		{
			name:    "sensitive strict accepts Yes",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Calm", SafeForSensitive: "Yes"},
			profile: domain.UserProfile{IsSensitive: true},
			want:    true,
		},
		{
			name:    "sensitive strict rejects Yes with caution",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Calm", SafeForSensitive: "Yes with caution"},
			profile: domain.UserProfile{IsSensitive: true},
			want:    false,
		},
		{
			name:    "sensitive permissive accepts Yes with caution",
			filter:  permissive,
			product: domain.Product{ID: "1", Name: "Calm", SafeForSensitive: "Yes with caution"},
			profile: domain.UserProfile{IsSensitive: true},
			want:    true,
		},
		{
			name:    "sensitive permissive rejects No",
			filter:  permissive,
			product: domain.Product{ID: "1", Name: "Calm", SafeForSensitive: "No"},
			profile: domain.UserProfile{IsSensitive: true},
			want:    false,
		},
		{
			name:    "missing sensitivity value is unsafe under strict",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Calm"},
			profile: domain.UserProfile{IsSensitive: true},
			want:    false,
		},
		{
			name:    "missing sensitivity value is unsafe under permissive",
			filter:  permissive,
			product: domain.Product{ID: "1", Name: "Calm"},
			profile: domain.UserProfile{IsSensitive: true},
			want:    false,
		},
		{
			name:    "sensitivity value ignored for non-sensitive users",
			filter:  strict,
			product: domain.Product{ID: "1", Name: "Calm", SafeForSensitive: "No"},
			profile: domain.UserProfile{},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsSafe(&tt.product, &tt.profile); got != tt.want {
				t.Errorf("IsSafe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafetyFilter_IsSafeNil(t *testing.T) {
	f := NewSafetyFilter(SensitivityStrict)
	if f.IsSafe(nil, &domain.UserProfile{}) {
		t.Error("IsSafe(nil product) = true, want false")
	}
	if f.IsSafe(&domain.Product{}, nil) {
		t.Error("IsSafe(nil profile) = true, want false")
	}
}

func TestSafetyFilter_UnknownPolicyIsStrict(t *testing.T) {
	f := NewSafetyFilter(SensitivityPolicy("whatever"))
	if f.Policy() != SensitivityStrict {
		t.Errorf("Policy() = %q, want strict", f.Policy())
	}
}

// Adding a hazard flag to a profile can only shrink the safe set
func TestSafetyFilter_FlagsOnlyExclude(t *testing.T) {
	products := testProducts()
	f := NewSafetyFilter(SensitivityPermissive)

	base := domain.UserProfile{SkinType: domain.SkinNormal, Area: domain.AreaFace}
	baseSafe := idSet(f.Filter(products, &base))

	flagged := []domain.UserProfile{
		{SkinType: domain.SkinNormal, Area: domain.AreaFace, IsPregnant: true},
		{SkinType: domain.SkinNormal, Area: domain.AreaFace, UsingPrescription: true},
		{SkinType: domain.SkinNormal, Area: domain.AreaFace, IsSensitive: true},
		{SkinType: domain.SkinNormal, Area: domain.AreaFace, IsSensitive: true, IsPregnant: true, UsingPrescription: true},
	}
	for _, profile := range flagged {
		for id := range idSet(f.Filter(products, &profile)) {
			if !baseSafe[id] {
				t.Errorf("product %s safe for flagged profile %+v but not for base", id, profile)
			}
		}
	}
}
