package usecase

import (
	"testing"

	"github.com/skinlens/backend/internal/domain"
)

func TestImplicitConcern(t *testing.T) {
	tests := map[domain.SkinType]domain.Concern{
		domain.SkinOily:        domain.ConcernAcne,
		domain.SkinDry:         domain.ConcernDryness,
		domain.SkinCombination: domain.ConcernDullness,
		domain.SkinNormal:      domain.ConcernDullness,
	}
	for skin, want := range tests {
		if got := ImplicitConcern(skin); got != want {
			t.Errorf("ImplicitConcern(%s) = %s, want %s", skin, got, want)
		}
	}
}

func TestConcernMatcher_Match(t *testing.T) {
	m := NewConcernMatcher(ConcernMatcherConfig{})
	products := testProducts()

	tests := []struct {
		name     string
		concerns []domain.Concern
		want     []string
	}{
		{
			name:     "no concerns keeps everything",
			concerns: nil,
			want:     []string{"C1", "C2", "T1", "T2", "S1", "S2", "S3", "M1", "M2", "P1", "B1", "I1"},
		},
		{
			name:     "aging",
			concerns: []domain.Concern{domain.ConcernAging},
			want:     []string{"S1", "S3"},
		},
		{
			name:     "dark spots matches secondary target and actives",
			concerns: []domain.Concern{domain.ConcernDarkSpots},
			want:     []string{"S2", "M2"},
		},
		{
			name:     "union of two concerns",
			concerns: []domain.Concern{domain.ConcernAging, domain.ConcernDarkSpots},
			want:     []string{"S1", "S2", "S3", "M2"},
		},
		{
			name:     "unknown concern does not narrow",
			concerns: []domain.Concern{"mystery"},
			want:     []string{"C1", "C2", "T1", "T2", "S1", "S2", "S3", "M1", "M2", "P1", "B1", "I1"},
		},
		{
			name:     "unknown concern beside a known one adds nothing",
			concerns: []domain.Concern{domain.ConcernAging, "redness-xyz"},
			want:     []string{"S1", "S3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idSet(m.Match(products, tt.concerns))
			if len(got) != len(tt.want) {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("Match() missing %s", id)
				}
			}
		})
	}
}

func TestConcernMatcher_MatchesMixedConcerns(t *testing.T) {
	m := NewConcernMatcher(ConcernMatcherConfig{})
	acne := domain.Product{ID: "A", Name: "Clear Gel", PrimaryTarget: "Acne"}
	hydration := domain.Product{ID: "B", Name: "Water Gel", PrimaryTarget: "Hydration"}
	products := []domain.Product{acne, hydration}

	only := m.Match(products, []domain.Concern{domain.ConcernAcne})
	mixed := m.Match(products, []domain.Concern{domain.ConcernAcne, "redness-xyz"})

	if len(only) != 1 || only[0].ID != "A" {
		t.Errorf("Match(acne) = %v, want [A]", idSet(only))
	}
	if len(mixed) != len(only) || mixed[0].ID != "A" {
		t.Errorf("Match(acne, unknown) = %v, want [A]", idSet(mixed))
	}
	if m.Matches(&hydration, []domain.Concern{domain.ConcernAcne, "redness-xyz"}) {
		t.Error("Matches() = true for an unrelated product with a mixed concern list")
	}
	if !m.Matches(&hydration, []domain.Concern{"redness-xyz"}) {
		t.Error("Matches() = false with only unknown concerns, want true")
	}
}

// Match over a union of concerns equals the union of the single matches
func TestConcernMatcher_UnionProperty(t *testing.T) {
	m := NewConcernMatcher(ConcernMatcherConfig{})
	products := testProducts()
	all := []domain.Concern{
		domain.ConcernAcne, domain.ConcernDarkSpots, domain.ConcernDryness, domain.ConcernTexture,
		domain.ConcernAging, domain.ConcernSensitivity, domain.ConcernDullness, domain.ConcernBarrierDamage,
	}

	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			combined := idSet(m.Match(products, []domain.Concern{a, b}))
			union := idSet(m.Match(products, []domain.Concern{a}))
			for id := range idSet(m.Match(products, []domain.Concern{b})) {
				union[id] = true
			}
			if len(combined) != len(union) {
				t.Errorf("Match(%s,%s) = %v, want union %v", a, b, combined, union)
				continue
			}
			for id := range union {
				if !combined[id] {
					t.Errorf("Match(%s,%s) missing %s", a, b, id)
				}
			}
		}
	}
}

func TestConcernMatcher_IncludeNotes(t *testing.T) {
	product := domain.Product{ID: "X", Name: "Quiet Cream", Notes: "Great for redness and irritation"}
	concerns := []domain.Concern{domain.ConcernSensitivity}

	if NewConcernMatcher(ConcernMatcherConfig{}).Matches(&product, concerns) {
		t.Error("Matches() = true without notes scanning, want false")
	}
	if !NewConcernMatcher(ConcernMatcherConfig{IncludeNotes: true}).Matches(&product, concerns) {
		t.Error("Matches() = false with notes scanning, want true")
	}
}

func TestConcernMatcher_KeywordOverride(t *testing.T) {
	m := NewConcernMatcher(ConcernMatcherConfig{
		Keywords: map[domain.Concern][]string{
			domain.ConcernAcne: {"  Tea Tree "},
		},
	})

	if got := m.Keywords(domain.ConcernAcne); len(got) != 1 || got[0] != "tea tree" {
		t.Errorf("Keywords(acne) = %v, want [tea tree]", got)
	}
	product := domain.Product{ID: "X", Name: "Spot Gel", KeyActives: "Tea tree oil"}
	if !m.Matches(&product, []domain.Concern{domain.ConcernAcne}) {
		t.Error("overridden keyword did not match")
	}
	if len(m.Keywords(domain.ConcernDryness)) == 0 {
		t.Error("override removed the defaults for other concerns")
	}
}

func TestConcernMatcher_Score(t *testing.T) {
	m := NewConcernMatcher(ConcernMatcherConfig{})

	tests := []struct {
		name     string
		product  domain.Product
		concerns []domain.Concern
		want     int
	}{
		{
			name:     "no concerns",
			product:  domain.Product{PrimaryTarget: "Acne"},
			concerns: nil,
			want:     0,
		},
		{
			name:     "counts each occurrence",
			product:  domain.Product{PrimaryTarget: "Acne", SecondaryTarget: "Acne scars", KeyActives: "Salicylic acid"},
			concerns: []domain.Concern{domain.ConcernAcne},
			want:     3,
		},
		{
			name:     "notes count toward the score",
			product:  domain.Product{PrimaryTarget: "Hydration", Notes: "Ceramide rich"},
			concerns: []domain.Concern{domain.ConcernDryness},
			want:     2,
		},
		{
			name:     "unknown concern scores nothing",
			product:  domain.Product{PrimaryTarget: "Acne"},
			concerns: []domain.Concern{"mystery"},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Score(&tt.product, tt.concerns); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}
