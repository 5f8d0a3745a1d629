package formatters

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"proedualt/internal/dashboard"
	"proedualt/internal/interview"
	"proedualt/internal/portfolio"
	"proedualt/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Data type keys used by the registry
const (
	TypeAny       = "any"
	TypeDashboard = "Dashboard"
	TypePortfolio = "Portfolio"
	TypeJobs      = "JobList"
	TypeInterview = "Interview"
	TypeMessage   = "Message"
	TypeProgress  = "Progress"
	TypeAnalysis  = "Analysis"
)

// JobList is a page of job postings
type JobList []types.Job

// Progress is the completion set with the points it earned
type Progress struct {
	Completed []types.ResourceID `json:"completed_ids"`
	TotalXP   int                `json:"total_xp"`
}

// Analysis is a set of recommendations for a GitHub handle
type Analysis struct {
	Handle          string                 `json:"github_username"`
	Recommendations []types.Recommendation `json:"recommendations"`
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeDashboard, &DashboardTextFormatter{})
	registry.RegisterFormatter("markdown", TypeDashboard, &DashboardMarkdownFormatter{})
	registry.RegisterFormatter("text", TypePortfolio, &PortfolioTextFormatter{})
	registry.RegisterFormatter("markdown", TypePortfolio, &PortfolioMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeJobs, &JobsTextFormatter{})
	registry.RegisterFormatter("markdown", TypeJobs, &JobsMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeInterview, &InterviewTextFormatter{})
	registry.RegisterFormatter("markdown", TypeInterview, &InterviewTextFormatter{})
	registry.RegisterFormatter("text", TypeProgress, &ProgressTextFormatter{})
	registry.RegisterFormatter("markdown", TypeProgress, &ProgressTextFormatter{})
	registry.RegisterFormatter("text", TypeAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", TypeAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("text", TypeMessage, &MessageFormatter{})
	registry.RegisterFormatter("markdown", TypeMessage, &MessageFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case dashboard.State:
		return TypeDashboard
	case portfolio.View:
		return TypePortfolio
	case JobList:
		return TypeJobs
	case interview.State:
		return TypeInterview
	case types.Message:
		return TypeMessage
	case Progress:
		return TypeProgress
	case Analysis:
		return TypeAnalysis
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	if s, ok := data.(dashboard.State); ok {
		data = dashboardDocument(s)
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// MessageFormatter prints a plain acknowledgement
type MessageFormatter struct{}

func (mf *MessageFormatter) Format(data any) (string, error) {
	m, ok := data.(types.Message)
	if !ok {
		return "", fmt.Errorf("expected Message, got %T", data)
	}
	return m.Message + "\n", nil
}

func (mf *MessageFormatter) SupportedType() string {
	return TypeMessage
}

// DisplayScore scales a backend fit score for display. Stored and
// compared values always keep the backend's unit.
func DisplayScore(score float64) int {
	return int(math.Round(score * 10))
}

// SkillLevel is one axis of the skill gap chart
type SkillLevel struct {
	Skill    string `json:"skill"`
	Yours    int    `json:"yours"`
	Required int    `json:"required"`
}

// Skill gap levels: a matched skill counts fully, a missing one barely
const (
	LevelRequired  = 100
	LevelMatched   = 100
	LevelUnmatched = 20
)

// SkillGap pairs every required skill of rec with the user's level
func SkillGap(rec types.Recommendation) []SkillLevel {
	levels := make([]SkillLevel, 0, len(rec.AllRequiredSkills))
	for _, skill := range rec.AllRequiredSkills {
		yours := LevelUnmatched
		if slices.Contains(rec.MatchedSkills, skill) {
			yours = LevelMatched
		}
		levels = append(levels, SkillLevel{Skill: skill, Yours: yours, Required: LevelRequired})
	}
	return levels
}
