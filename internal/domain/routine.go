package domain

import (
	"strings"
	"time"
)

// Step is one of the five routine stages
type Step string

const (
	StepCleanse    Step = "Cleanse"
	StepTone       Step = "Tone"
	StepTreat      Step = "Treat"
	StepMoisturize Step = "Moisturize"
	StepProtect    Step = "Protect"
)

// RoutineSteps is the fixed order of a routine
var RoutineSteps = []Step{StepCleanse, StepTone, StepTreat, StepMoisturize, StepProtect}

// StepFallbacks is the advisory text used when a step has no product
var StepFallbacks = map[Step]string{
	StepCleanse:    "Gentle gel or cream cleanser",
	StepTone:       "Hydrating, alcohol-free toner",
	StepTreat:      "Targeted serum for your concern",
	StepMoisturize: "Suitable moisturizer for your skin type",
	StepProtect:    "Broad-spectrum SPF 50+ every morning",
}

// SensitiveCautionNotice is appended when a sensitive user gets a product
// that is only conditionally tolerated
const SensitiveCautionNotice = "Caution: this product is only conditionally suitable for sensitive skin. Patch test first and introduce it slowly."

// StepResult is the outcome of selecting a product for one step
type StepResult struct {
	Step            Step    `json:"step"`
	Details         string  `json:"details"`
	ProductID       *string `json:"productId"`
	ProductName     string  `json:"productName,omitempty"`
	RecommendedTime string  `json:"recommendedTime,omitempty"`
	MaxFrequency    string  `json:"maxFrequency,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Caution         bool    `json:"caution,omitempty"`
	Score           int     `json:"score,omitempty"`
	Candidates      int     `json:"candidates"`
}

// HasProduct reports whether a real catalog row was chosen
func (r StepResult) HasProduct() bool {
	return r.ProductID != nil
}

// Stage names of the routine builder pipeline
const (
	StageArea     = "area"
	StageSafety   = "safety"
	StageSkinType = "skin_type"
	StageConcern  = "concern"
)

// StageReport records what one pipeline stage did to the candidate set
type StageReport struct {
	Stage    string `json:"stage"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	FellBack bool   `json:"fellBack"`
	Result   int    `json:"result"`
}

// Routine is the assembled five-step routine
type Routine struct {
	Area      Area          `json:"area"`
	Steps     []StepResult  `json:"steps"`
	Concerns  []Concern     `json:"concerns"`
	Trace     []StageReport `json:"trace"`
	Warnings  []string      `json:"warnings,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// StepResult returns the result for a step
func (r *Routine) StepResult(step Step) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s, true
		}
	}
	return StepResult{}, false
}

// Routine tips shown alongside a successful recommendation
const RoutineTip = "Start one new product at a time. Patch test. Be consistent."

// NextGoals are shown after a successful recommendation
var NextGoals = []string{"Crystal clear skin", "Natural glow", "Youthful bounce"}

// Gate advisories
const (
	AdvisoryConsultDoctor        = "Safety first! Please consult a doctor or dermatologist before starting new products."
	AdvisoryProfessionalGuidance = "Multiple concerns + sensitivity — professional guidance recommended."
)

// Recommendation is the response to a routine request. When Gated is set,
// Routine is nil and Advisory explains why.
type Recommendation struct {
	ID             string   `json:"id"`
	Gated          bool     `json:"gated"`
	Advisory       string   `json:"advisory,omitempty"`
	Routine        *Routine `json:"routine,omitempty"`
	BodyRoutine    *Routine `json:"bodyRoutine,omitempty"`
	Tip            string   `json:"tip,omitempty"`
	NextGoals      []string `json:"nextGoals,omitempty"`
	CatalogVersion string   `json:"catalogVersion,omitempty"`
}

// ParseStep maps a step name to a Step, case-insensitively
func ParseStep(name string) (Step, bool) {
	for _, s := range RoutineSteps {
		if strings.EqualFold(strings.TrimSpace(name), string(s)) {
			return s, true
		}
	}
	return "", false
}
