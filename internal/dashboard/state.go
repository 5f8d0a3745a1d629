package dashboard

import (
	"slices"

	"proedualt/internal/identity"
	"proedualt/internal/types"
)

// Phase is the analysis orchestrator state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnalyzing
	PhaseResults
	PhaseAnalysisError
	PhasePlanGenerating
	PhasePlanReady
	PhasePlanError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseResults:
		return "results"
	case PhaseAnalysisError:
		return "analysis-error"
	case PhasePlanGenerating:
		return "plan-generating"
	case PhasePlanReady:
		return "plan-ready"
	case PhasePlanError:
		return "plan-error"
	default:
		return "unknown"
	}
}

// Loading reports whether a network call of the orchestrator is pending
func (p Phase) Loading() bool {
	return p == PhaseAnalyzing || p == PhasePlanGenerating
}

// State is a point-in-time copy of everything the dashboard shows
type State struct {
	Session     *identity.Session
	Profile     *types.Profile
	HandleInput string
	Editing     bool

	Phase           Phase
	Recommendations []types.Recommendation
	AnalysisError   string
	Career          string
	Plan            []types.PlanItem
	PlanError       string

	Completed []types.ResourceID
}

// SignedIn reports whether the state belongs to a signed-in user
func (s State) SignedIn() bool {
	return s.Session != nil
}

// IsCompleted reports whether id is in the completion set
func (s State) IsCompleted(id types.ResourceID) bool {
	return slices.Contains(s.Completed, id)
}

// Recommendation returns the recommendation for career from the last analysis
func (s State) Recommendation(career string) (types.Recommendation, bool) {
	for _, r := range s.Recommendations {
		if r.Career == career {
			return r, true
		}
	}
	return types.Recommendation{}, false
}

// TotalXP returns the profile's points, 0 before the profile loads
func (s State) TotalXP() int {
	if s.Profile == nil {
		return 0
	}
	return s.Profile.TotalXP
}

func (s State) clone() State {
	out := s
	out.Session = s.Session.Clone()
	out.Profile = s.Profile.Clone()
	if s.Recommendations != nil {
		out.Recommendations = make([]types.Recommendation, len(s.Recommendations))
		for i, r := range s.Recommendations {
			out.Recommendations[i] = r.Clone()
		}
	}
	out.Plan = slices.Clone(s.Plan)
	out.Completed = slices.Clone(s.Completed)
	return out
}
