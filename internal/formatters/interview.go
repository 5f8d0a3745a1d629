package formatters

import (
	"fmt"
	"strings"

	"proedualt/internal/interview"
)

// InterviewTextFormatter renders the interview state
type InterviewTextFormatter struct{}

func (itf *InterviewTextFormatter) Format(data any) (string, error) {
	s, ok := data.(interview.State)
	if !ok {
		return "", fmt.Errorf("expected interview.State, got %T", data)
	}

	var output strings.Builder
	if s.Stage == interview.StageSelecting {
		output.WriteString("Choose a career path:\n")
		for i, c := range interview.Careers {
			output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, c))
		}
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("Interview for: %s\n\n", s.Career))
	output.WriteString(fmt.Sprintf("Question:\n%s\n", s.Question))
	if s.Feedback != "" {
		output.WriteString(fmt.Sprintf("\nFeedback:\n%s\n", s.Feedback))
	}
	return output.String(), nil
}

func (itf *InterviewTextFormatter) SupportedType() string {
	return TypeInterview
}
