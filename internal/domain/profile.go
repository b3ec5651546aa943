package domain

import "strings"

// SkinType is the user's self-described skin type
type SkinType string

const (
	SkinOily        SkinType = "Oily"
	SkinDry         SkinType = "Dry"
	SkinCombination SkinType = "Combination"
	SkinNormal      SkinType = "Normal"
)

// Area is where the user is shopping
type Area string

const (
	AreaFace Area = "Face"
	AreaBody Area = "Body"
	AreaBoth Area = "Both"
)

// Concern is a canonical concern tag
type Concern string

const (
	ConcernAcne          Concern = "acne"
	ConcernDarkSpots     Concern = "dark-spots"
	ConcernDryness       Concern = "dryness"
	ConcernTexture       Concern = "texture"
	ConcernAging         Concern = "aging"
	ConcernSensitivity   Concern = "sensitivity"
	ConcernDullness      Concern = "dullness"
	ConcernBarrierDamage Concern = "barrier-damage"
)

// ConcernOption pairs a canonical tag with its display label
type ConcernOption struct {
	Tag   Concern `json:"tag"`
	Label string  `json:"label"`
}

// ConcernOptions lists supported concerns in display order
var ConcernOptions = []ConcernOption{
	{ConcernAcne, "Acne / breakouts"},
	{ConcernDarkSpots, "Dark spots / uneven tone / melasma"},
	{ConcernDryness, "Dryness / dehydration"},
	{ConcernTexture, "Texture / rough skin"},
	{ConcernAging, "Aging / fine lines"},
	{ConcernSensitivity, "Sensitivity / irritation"},
	{ConcernDullness, "Dull skin"},
	{ConcernBarrierDamage, "Damaged barrier"},
}

// concernAliases maps lowercase labels and shorthands to tags
var concernAliases = map[string]Concern{
	"dark spots":               ConcernDarkSpots,
	"dark spots / uneven tone": ConcernDarkSpots,
	"uneven tone":              ConcernDarkSpots,
	"melasma":                  ConcernDarkSpots,
	"dehydration":              ConcernDryness,
	"dull":                     ConcernDullness,
	"damaged barrier":          ConcernBarrierDamage,
	"barrier":                  ConcernBarrierDamage,
	"breakouts":                ConcernAcne,
	"fine lines":               ConcernAging,
	"irritation":               ConcernSensitivity,
}

// ParseConcern maps a tag, label, or alias to a canonical concern.
// "None" and blanks return ok=false; unknown values come back as-is so
// that they flow through matching as no-ops.
func ParseConcern(raw string) (Concern, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == "none" {
		return "", false
	}
	for _, opt := range ConcernOptions {
		if s == string(opt.Tag) || s == strings.ToLower(opt.Label) {
			return opt.Tag, true
		}
	}
	if c, ok := concernAliases[s]; ok {
		return c, true
	}
	return Concern(s), true
}

// ParseConcerns parses and de-duplicates a list of concern labels
func ParseConcerns(raw []string) []Concern {
	seen := make(map[Concern]bool, len(raw))
	var out []Concern
	for _, r := range raw {
		c, ok := ParseConcern(r)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// UserProfile is the per-request description of the user
type UserProfile struct {
	SkinType          SkinType  `json:"skinType"`
	Concerns          []Concern `json:"concerns"`
	IsSensitive       bool      `json:"isSensitive"`
	IsPregnant        bool      `json:"isPregnant"`
	UsingPrescription bool      `json:"usingPrescription"`
	Area              Area      `json:"area"`
}

// WithArea returns a copy of the profile shopping a different area
func (p UserProfile) WithArea(area Area) UserProfile {
	p.Area = area
	p.Concerns = append([]Concern(nil), p.Concerns...)
	return p
}

// RoutineRequest is the JSON body of a routine recommendation request
type RoutineRequest struct {
	SkinType          string   `json:"skinType" binding:"required,oneof=Oily Dry Combination Normal"`
	Concerns          []string `json:"concerns"`
	IsSensitive       bool     `json:"isSensitive"`
	IsPregnant        bool     `json:"isPregnant"`
	UsingPrescription bool     `json:"usingPrescription"`
	Area              string   `json:"area" binding:"omitempty,oneof=Face Body Both"`
	IncludeBodyMatch  bool     `json:"includeBodyMatch"`
}

// Profile converts the request into a UserProfile
func (r *RoutineRequest) Profile() UserProfile {
	area := Area(r.Area)
	if area == "" {
		area = AreaFace
	}
	return UserProfile{
		SkinType:          SkinType(r.SkinType),
		Concerns:          ParseConcerns(r.Concerns),
		IsSensitive:       r.IsSensitive,
		IsPregnant:        r.IsPregnant,
		UsingPrescription: r.UsingPrescription,
		Area:              area,
	}
}
