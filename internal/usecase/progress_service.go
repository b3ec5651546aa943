package usecase

import (
	"strings"

	"github.com/skinlens/backend/internal/domain"
)

// ProgressService turns a progress report into follow-up advice. It keeps
// no state and knows nothing about previously generated routines.
type ProgressService struct{}

// NewProgressService creates a progress service
func NewProgressService() *ProgressService {
	return &ProgressService{}
}

// knownTimeUsed lists the accepted time-used answers
var knownTimeUsed = []domain.TimeUsed{
	domain.TimeNotStarted,
	domain.TimeUnderTwoWks,
	domain.TimeTwoToFourWks,
	domain.TimeFourToEight,
	domain.TimeEightPlus,
}

// dashReplacer folds hyphens and other dashes into the en dash of the labels
var dashReplacer = strings.NewReplacer("-", "–", "—", "–", "‒", "–", "−", "–")

// parseTimeUsed matches an answer to a known label, ignoring case, spacing
// around the range, and which dash the client typed
func parseTimeUsed(raw string) (domain.TimeUsed, bool) {
	v := dashReplacer.Replace(strings.Join(strings.Fields(raw), " "))
	v = strings.ReplaceAll(v, " – ", "–")
	for _, known := range knownTimeUsed {
		if strings.EqualFold(v, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Advise returns advice for the report
func (s *ProgressService) Advise(report *domain.ProgressReport) (*domain.ProgressAdvice, error) {
	if report == nil {
		return nil, domain.ErrInvalidRequest
	}
	timeUsed, ok := parseTimeUsed(report.TimeUsed)
	if !ok {
		return nil, domain.ErrInvalidRequest
	}

	switch timeUsed {
	case domain.TimeNotStarted:
		return &domain.ProgressAdvice{
			Level:   domain.AdviceInfo,
			Summary: "Start slowly: introduce one product every 7–10 days. Always patch test first!",
		}, nil
	case domain.TimeUnderTwoWks:
		return &domain.ProgressAdvice{
			Level:   domain.AdviceInfo,
			Summary: "It's still early! Most actives take 4–8 weeks to show real results. Keep going consistently.",
		}, nil
	}

	advice := &domain.ProgressAdvice{
		FollowUp: "Want a full updated routine? Book a consultation or share progress photos next time.",
	}

	problems := toSet(report.Problems)
	if len(problems) == 0 {
		advice.Level = domain.AdviceSuccess
		advice.Summary = "Looks like good progress! Keep the routine consistent for another 4–8 weeks."
		return advice, nil
	}

	advice.Level = domain.AdviceWarning
	advice.Summary = "Possible next steps:"

	if problems[domain.ProblemStillDry] || problems[domain.ProblemStillDull] {
		advice.Steps = append(advice.Steps,
			"Layer a hydrating essence or serum before moisturizer",
			"Consider a richer night cream or occlusive to lock in moisture",
		)
	}
	if problems[domain.ProblemBreakouts] {
		advice.Steps = append(advice.Steps,
			"Purging is normal with exfoliating actives — usually settles in 4–6 weeks",
		)
	}
	if problems[domain.ProblemIrritation] || problems[domain.ProblemNewSensitivity] {
		advice.Steps = append(advice.Steps,
			"Reduce frequency to every other day",
			"Add soothing ingredients: centella, panthenol, ceramides",
		)
	}
	if problems[domain.ProblemWorse] {
		advice.Level = domain.AdviceStop
		advice.Steps = append(advice.Steps,
			"Stop new products immediately and consult a dermatologist if irritation persists.",
		)
	}

	return advice, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[strings.TrimSpace(it)] = true
	}
	return set
}
