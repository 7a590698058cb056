package core

import (
	"fmt"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// Practice selection limits.
const (
	PracticesPerIssue = 5
	PracticesPerPhase = 2
)

// recommend ranks the issues of analysis and plans the first phases.
func (s *Service) recommend(analysis numerology.Analysis) ([]RecommendationView, PlanView) {
	recs := numerology.Recommend(analysis)

	views := make([]RecommendationView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, RecommendationView{
			Recommendation: rec,
			Focus:          s.issueFocus(rec.Issue),
			Keywords:       s.catalog.Keywords(rec.Digit),
			Practices:      s.catalog.PracticesFor(rec.Digit, rec.Kind == numerology.IssueAncestral, PracticesPerIssue),
		})
	}

	plan := numerology.PlanPractice(recs)
	pv := PlanView{Days: plan.Days, Phases: make([]PhaseView, 0, len(plan.Phases))}
	for i, ph := range plan.Phases {
		text := s.catalog.PlanPhase(ph.Stage)
		practices := views[i].Practices
		if len(practices) > PracticesPerPhase {
			practices = practices[:PracticesPerPhase]
		}
		pv.Phases = append(pv.Phases, PhaseView{
			Stage:     ph.Stage,
			Name:      text.Name,
			Goal:      text.Goal,
			FirstDay:  ph.FirstDay,
			LastDay:   ph.LastDay,
			Focus:     views[i].Focus,
			Issue:     ph.Focus.Issue,
			Practices: practices,
		})
		pv.TotalPractices += len(practices)
	}
	return views, pv
}

// issueFocus describes what working on is means.
func (s *Service) issueFocus(is numerology.Issue) string {
	switch is.Kind {
	case numerology.IssueDeficiency:
		return fmt.Sprintf("Missing %d: develop %s", is.Digit, s.catalog.Quality(is.Digit))
	case numerology.IssueExcess:
		return fmt.Sprintf("Excess of %d: balance %s", is.Digit, s.catalog.Quality(is.Digit))
	case numerology.IssueAncestral:
		if p, ok := s.catalog.Program(is.Digit); ok {
			return fmt.Sprintf("Inherited program %d, %s: %s", is.Digit, p.Title, p.Healing)
		}
	}
	return fmt.Sprintf("Digit %d", is.Digit)
}
