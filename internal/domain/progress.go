package domain

// TimeUsed is how long the user has followed their routine
type TimeUsed string

const (
	TimeNotStarted   TimeUsed = "Not started yet"
	TimeUnderTwoWks  TimeUsed = "Less than 2 weeks"
	TimeTwoToFourWks TimeUsed = "2–4 weeks"
	TimeFourToEight  TimeUsed = "4–8 weeks"
	TimeEightPlus    TimeUsed = "8+ weeks"
)

// Progress problems the advice rules react to
const (
	ProblemStillDry       = "Still dry/tight"
	ProblemStillDull      = "Still dull"
	ProblemRoughTexture   = "Still rough texture"
	ProblemBreakouts      = "Breakouts/purging"
	ProblemIrritation     = "Irritation/stinging"
	ProblemNoImprovement  = "No improvement"
	ProblemWorse          = "Worse than before"
	ProblemNewSensitivity = "New sensitivity"
	ProblemOther          = "Other (please describe below)"
)

// Advice levels
const (
	AdviceInfo    = "info"
	AdviceWarning = "warning"
	AdviceSuccess = "success"
	AdviceStop    = "stop"
)

// ProgressReport is the user's update on how their skin is responding
type ProgressReport struct {
	TimeUsed     string   `json:"timeUsed" binding:"required"`
	Improvements []string `json:"improvements"`
	Problems     []string `json:"problems"`
	Notes        string   `json:"notes"`
}

// ProgressAdvice is the follow-up advice for a progress report
type ProgressAdvice struct {
	Level    string   `json:"level"`
	Summary  string   `json:"summary"`
	Steps    []string `json:"steps,omitempty"`
	FollowUp string   `json:"followUp,omitempty"`
}
