package formatters

import (
	"fmt"
	"strings"

	"proedualt/internal/portfolio"
)

// PortfolioTextFormatter renders a portfolio page for a terminal
type PortfolioTextFormatter struct{}

func (ptf *PortfolioTextFormatter) Format(data any) (string, error) {
	v, ok := data.(portfolio.View)
	if !ok {
		return "", fmt.Errorf("expected portfolio.View, got %T", data)
	}

	var output strings.Builder
	switch v.Status {
	case portfolio.StatusLoading:
		output.WriteString("Loading Portfolio...\n")
		return output.String(), nil
	case portfolio.StatusError:
		output.WriteString(v.Error + "\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("=== %s ===\n", strings.ToUpper(v.Name)))
	output.WriteString(v.Bio + "\n")
	output.WriteString(fmt.Sprintf("GitHub: %s\n", v.GitHubURL))
	if v.LinkedinURL != "" {
		output.WriteString(fmt.Sprintf("LinkedIn: %s\n", v.LinkedinURL))
	}
	output.WriteString(fmt.Sprintf("\nTotal XP Earned: %d\n", v.TotalXP))
	if len(v.Skills) > 0 {
		output.WriteString(fmt.Sprintf("Top Skills: %s\n", strings.Join(v.Skills, ", ")))
	}

	output.WriteString("\n=== FEATURED PROJECTS ===\n")
	if len(v.Projects) == 0 {
		output.WriteString("No projects synced yet.\n")
	}
	for _, p := range v.Projects {
		output.WriteString(fmt.Sprintf("%s  ★ %d\n", p.Name, p.Stars))
		output.WriteString(fmt.Sprintf("  %s\n", p.Description))
		if len(p.Languages) > 0 {
			output.WriteString(fmt.Sprintf("  %s\n", strings.Join(p.Languages, ", ")))
		}
		output.WriteString(fmt.Sprintf("  %s\n", p.URL))
	}
	return output.String(), nil
}

func (ptf *PortfolioTextFormatter) SupportedType() string {
	return TypePortfolio
}

// PortfolioMarkdownFormatter renders a portfolio page as markdown
type PortfolioMarkdownFormatter struct{}

func (pmf *PortfolioMarkdownFormatter) Format(data any) (string, error) {
	v, ok := data.(portfolio.View)
	if !ok {
		return "", fmt.Errorf("expected portfolio.View, got %T", data)
	}
	if v.Status != portfolio.StatusReady {
		return (&PortfolioTextFormatter{}).Format(v)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# %s\n\n%s\n\n", v.Name, v.Bio))
	output.WriteString(fmt.Sprintf("[GitHub](%s)", v.GitHubURL))
	if v.LinkedinURL != "" {
		output.WriteString(fmt.Sprintf(" · [LinkedIn](%s)", v.LinkedinURL))
	}
	output.WriteString(fmt.Sprintf("\n\n**Total XP Earned:** %d\n\n", v.TotalXP))

	if len(v.Skills) > 0 {
		output.WriteString("## Top Skills\n\n")
		for _, s := range v.Skills {
			output.WriteString(fmt.Sprintf("`%s` ", s))
		}
		output.WriteString("\n\n")
	}

	output.WriteString("## Featured Projects\n\n")
	for _, p := range v.Projects {
		output.WriteString(fmt.Sprintf("### [%s](%s) ★ %d\n\n%s\n\n", p.Name, p.URL, p.Stars, p.Description))
		if len(p.Languages) > 0 {
			output.WriteString(fmt.Sprintf("_%s_\n\n", strings.Join(p.Languages, ", ")))
		}
	}
	return output.String(), nil
}

func (pmf *PortfolioMarkdownFormatter) SupportedType() string {
	return TypePortfolio
}

// JobsTextFormatter lists job postings
type JobsTextFormatter struct{}

func (jtf *JobsTextFormatter) Format(data any) (string, error) {
	jobs, ok := data.(JobList)
	if !ok {
		return "", fmt.Errorf("expected JobList, got %T", data)
	}

	var output strings.Builder
	if len(jobs) == 0 {
		output.WriteString("No job postings yet. Run `proedualt jobs scrape` to fetch the latest internships.\n")
		return output.String(), nil
	}
	for _, j := range jobs {
		output.WriteString(fmt.Sprintf("%s\n  %s · %s\n  Apply: %s\n", j.Title, j.CompanyName, j.Location, j.ApplyLink))
	}
	return output.String(), nil
}

func (jtf *JobsTextFormatter) SupportedType() string {
	return TypeJobs
}

// JobsMarkdownFormatter renders job postings as a table
type JobsMarkdownFormatter struct{}

func (jmf *JobsMarkdownFormatter) Format(data any) (string, error) {
	jobs, ok := data.(JobList)
	if !ok {
		return "", fmt.Errorf("expected JobList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Internships\n\n| Title | Company | Location | |\n|---|---|---|---|\n")
	for _, j := range jobs {
		output.WriteString(fmt.Sprintf("| %s | %s | %s | [Apply](%s) |\n",
			escapeCell(j.Title), escapeCell(j.CompanyName), escapeCell(j.Location), j.ApplyLink))
	}
	return output.String(), nil
}

func (jmf *JobsMarkdownFormatter) SupportedType() string {
	return TypeJobs
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
