package formatters

import (
	"fmt"
	"strings"

	"proedualt/internal/dashboard"
	"proedualt/internal/types"
)

type recommendationDoc struct {
	types.Recommendation
	DisplayScore int          `json:"display_score"`
	SkillGap     []SkillLevel `json:"skill_gap"`
}

type planItemDoc struct {
	types.PlanItem
	Completed bool `json:"completed"`
}

type dashboardDoc struct {
	SignedIn        bool                `json:"signed_in"`
	Contact         string              `json:"contact,omitempty"`
	Profile         *types.Profile      `json:"profile,omitempty"`
	TotalXP         int                 `json:"total_xp"`
	Editing         bool                `json:"editing"`
	Phase           string              `json:"phase"`
	Recommendations []recommendationDoc `json:"recommendations,omitempty"`
	AnalysisError   string              `json:"analysis_error,omitempty"`
	Career          string              `json:"career,omitempty"`
	Plan            []planItemDoc       `json:"plan,omitempty"`
	PlanError       string              `json:"plan_error,omitempty"`
	Completed       []types.ResourceID  `json:"completed_ids"`
}

func dashboardDocument(s dashboard.State) dashboardDoc {
	doc := dashboardDoc{
		SignedIn:      s.SignedIn(),
		Contact:       s.Session.Contact(),
		Profile:       s.Profile,
		TotalXP:       s.TotalXP(),
		Editing:       s.Editing,
		Phase:         s.Phase.String(),
		AnalysisError: s.AnalysisError,
		Career:        s.Career,
		PlanError:     s.PlanError,
		Completed:     s.Completed,
	}
	if doc.Completed == nil {
		doc.Completed = []types.ResourceID{}
	}
	for _, r := range s.Recommendations {
		doc.Recommendations = append(doc.Recommendations, recommendationDoc{
			Recommendation: r,
			DisplayScore:   DisplayScore(r.Score),
			SkillGap:       SkillGap(r),
		})
	}
	for _, item := range s.Plan {
		doc.Plan = append(doc.Plan, planItemDoc{PlanItem: item, Completed: s.IsCompleted(item.ID)})
	}
	return doc
}

// DashboardTextFormatter renders the dashboard for a terminal
type DashboardTextFormatter struct{}

func (dtf *DashboardTextFormatter) Format(data any) (string, error) {
	s, ok := data.(dashboard.State)
	if !ok {
		return "", fmt.Errorf("expected dashboard.State, got %T", data)
	}

	var output strings.Builder
	if !s.SignedIn() {
		output.WriteString("Not signed in. Run `proedualt login` to continue.\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("Welcome, %s\n", s.Session.Contact()))
	output.WriteString(fmt.Sprintf("Total XP: %d\n\n", s.TotalXP()))

	output.WriteString("=== PROFILE ===\n")
	switch {
	case s.Profile == nil:
		output.WriteString("Profile not loaded.\n")
	case s.Editing:
		output.WriteString(fmt.Sprintf("GitHub username: %q (editing)\n", s.HandleInput))
		if !s.Profile.HasHandle() {
			output.WriteString("Save your GitHub username to unlock analysis.\n")
		}
	default:
		output.WriteString(fmt.Sprintf("GitHub username: %s\n", s.Profile.GithubUsername))
	}
	if s.Profile != nil && len(s.Profile.ResumeSkills) > 0 {
		output.WriteString(fmt.Sprintf("Resume skills: %s\n", strings.Join(s.Profile.ResumeSkills, ", ")))
	}

	switch s.Phase {
	case dashboard.PhaseAnalyzing:
		output.WriteString("\nAnalyzing...\n")
	case dashboard.PhaseAnalysisError:
		output.WriteString(fmt.Sprintf("\nError: %s\n", s.AnalysisError))
	}

	if len(s.Recommendations) > 0 {
		output.WriteString("\n=== CAREER RECOMMENDATIONS ===\n")
		for i, r := range s.Recommendations {
			output.WriteString(fmt.Sprintf("%d. %s  (score %d)\n", i+1, r.Career, DisplayScore(r.Score)))
			if len(r.MatchedSkills) > 0 {
				output.WriteString(fmt.Sprintf("   Matched: %s\n", strings.Join(r.MatchedSkills, ", ")))
			}
			for _, lvl := range SkillGap(r) {
				output.WriteString(fmt.Sprintf("   %-20s %3d/%d\n", lvl.Skill, lvl.Yours, lvl.Required))
			}
		}
	}

	switch s.Phase {
	case dashboard.PhasePlanGenerating:
		output.WriteString(fmt.Sprintf("\nGenerating plan for %s...\n", s.Career))
	case dashboard.PhasePlanError:
		output.WriteString(fmt.Sprintf("\nError: %s\n", s.PlanError))
	}

	if len(s.Plan) > 0 {
		output.WriteString(fmt.Sprintf("\n=== LEARNING PLAN: %s ===\n", s.Career))
		for _, item := range s.Plan {
			mark := " "
			if s.IsCompleted(item.ID) {
				mark = "x"
			}
			output.WriteString(fmt.Sprintf("[%s] %s  %s (+%d XP)\n", mark, item.ID, item.Title, item.XPPoints))
			if item.URL != "" {
				output.WriteString(fmt.Sprintf("    %s\n", item.URL))
			}
		}
	}

	return output.String(), nil
}

func (dtf *DashboardTextFormatter) SupportedType() string {
	return TypeDashboard
}

// DashboardMarkdownFormatter renders the dashboard as markdown
type DashboardMarkdownFormatter struct{}

func (dmf *DashboardMarkdownFormatter) Format(data any) (string, error) {
	s, ok := data.(dashboard.State)
	if !ok {
		return "", fmt.Errorf("expected dashboard.State, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# ProEduAlt Dashboard\n\n")
	if !s.SignedIn() {
		output.WriteString("_Not signed in._\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("**%s** · Total XP: **%d**\n\n", s.Session.Contact(), s.TotalXP()))
	if s.Profile.HasHandle() {
		output.WriteString(fmt.Sprintf("GitHub: [%[1]s](https://github.com/%[1]s)\n\n", s.Profile.GithubUsername))
	}

	if s.AnalysisError != "" {
		output.WriteString(fmt.Sprintf("> **Error:** %s\n\n", s.AnalysisError))
	}
	if len(s.Recommendations) > 0 {
		output.WriteString("## Career Recommendations\n\n")
		output.WriteString("| Career | Score | Matched skills |\n|---|---|---|\n")
		for _, r := range s.Recommendations {
			output.WriteString(fmt.Sprintf("| %s | %d | %s |\n", r.Career, DisplayScore(r.Score), strings.Join(r.MatchedSkills, ", ")))
		}
		output.WriteString("\n")
	}

	if s.PlanError != "" {
		output.WriteString(fmt.Sprintf("> **Error:** %s\n\n", s.PlanError))
	}
	if len(s.Plan) > 0 {
		output.WriteString(fmt.Sprintf("## Learning Plan: %s\n\n", s.Career))
		for _, item := range s.Plan {
			mark := " "
			if s.IsCompleted(item.ID) {
				mark = "x"
			}
			output.WriteString(fmt.Sprintf("- [%s] [%s](%s) (+%d XP) `%s`\n", mark, item.Title, item.URL, item.XPPoints, item.ID))
		}
	}

	return output.String(), nil
}

func (dmf *DashboardMarkdownFormatter) SupportedType() string {
	return TypeDashboard
}

// ProgressTextFormatter lists completed plan items
type ProgressTextFormatter struct{}

func (ptf *ProgressTextFormatter) Format(data any) (string, error) {
	p, ok := data.(Progress)
	if !ok {
		return "", fmt.Errorf("expected Progress, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Total XP: %d\n", p.TotalXP))
	if len(p.Completed) == 0 {
		output.WriteString("No completed tasks yet.\n")
		return output.String(), nil
	}
	output.WriteString(fmt.Sprintf("Completed tasks (%d):\n", len(p.Completed)))
	for _, id := range p.Completed {
		output.WriteString(fmt.Sprintf("  - %s\n", id))
	}
	return output.String(), nil
}

func (ptf *ProgressTextFormatter) SupportedType() string {
	return TypeProgress
}

// AnalysisTextFormatter renders recommendations computed for a handle
// outside of a signed-in dashboard
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	a, ok := data.(Analysis)
	if !ok {
		return "", fmt.Errorf("expected Analysis, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("=== CAREER RECOMMENDATIONS: %s ===\n", a.Handle))
	if len(a.Recommendations) == 0 {
		output.WriteString("No recommendations.\n")
		return output.String(), nil
	}
	for i, r := range a.Recommendations {
		output.WriteString(fmt.Sprintf("%d. %s  (score %d)\n", i+1, r.Career, DisplayScore(r.Score)))
		for _, lvl := range SkillGap(r) {
			output.WriteString(fmt.Sprintf("   %-20s %3d/%d\n", lvl.Skill, lvl.Yours, lvl.Required))
		}
	}
	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return TypeAnalysis
}
