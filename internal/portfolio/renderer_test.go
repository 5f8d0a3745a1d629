package portfolio

import (
	"context"
	"fmt"
	"testing"

	"proedualt/internal/backend"
	"proedualt/internal/errors"
	"proedualt/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	result backend.Result[types.Portfolio]
	err    error
	handle string
}

func (f *fakeSource) Portfolio(ctx context.Context, handle string) (backend.Result[types.Portfolio], error) {
	f.handle = handle
	return f.result, f.err
}

func TestTopSkills(t *testing.T) {
	many := make([]string, 20)
	for i := range many {
		many[i] = fmt.Sprintf("skill-%d", i)
	}

	tests := []struct {
		name     string
		resume   []string
		projects []types.Project
		expected []string
	}{
		{
			name:     "resume first then languages",
			resume:   []string{"Go", "SQL"},
			projects: []types.Project{{Languages: []string{"Go", "Rust"}}, {Languages: []string{"TypeScript"}}},
			expected: []string{"Go", "SQL", "Rust", "TypeScript"},
		},
		{
			name:     "no resume skills",
			projects: []types.Project{{Languages: []string{"Python", "", "Python"}}},
			expected: []string{"Python"},
		},
		{
			name:     "nothing",
			expected: []string{},
		},
		{
			name:     "capped",
			resume:   many,
			expected: many[:MaxSkills],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopSkills(tt.resume, tt.projects, MaxSkills)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTopSkillsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		got := TopSkills([]string{"Go"}, []types.Project{{Languages: []string{"Rust"}}}, limit)
		if len(got) != 0 {
			t.Errorf("Expected no skills for limit %d, got %v", limit, got)
		}
	}
}

func TestLoadReady(t *testing.T) {
	src := &fakeSource{result: backend.Result[types.Portfolio]{
		Outcome: backend.OK,
		Value: types.Portfolio{
			Profile: types.Profile{GithubUsername: "octo", ResumeSkills: []string{"Go"}, TotalXP: 120},
			Projects: []types.Project{
				{RepoName: "proedualt", RepoURL: "https://github.com/octo/proedualt", Stars: 3, Languages: []string{"Go", "HTML"}},
			},
		},
	}}
	r := NewRenderer(src, nil, errors.NewNop())

	v := r.Load(context.Background(), " octo ")

	assert.Equal(t, "octo", src.handle)
	require.Equal(t, StatusReady, v.Status)
	assert.Equal(t, "octo", v.Name, "name falls back to the handle")
	assert.Equal(t, DefaultBio, v.Bio)
	assert.Equal(t, "https://github.com/octo", v.GitHubURL)
	assert.Equal(t, 120, v.TotalXP)
	assert.Equal(t, []string{"Go", "HTML"}, v.Skills)
	require.Len(t, v.Projects, 1)
	assert.Equal(t, DefaultDescription, v.Projects[0].Description)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   *fakeSource
		handle   string
		expected string
	}{
		{
			name:     "backend detail",
			source:   &fakeSource{result: backend.Result[types.Portfolio]{Outcome: backend.Err, Message: "User is private"}},
			handle:   "octo",
			expected: "User is private",
		},
		{
			name:     "connectivity",
			source:   &fakeSource{err: errors.NewNetworkError(errors.ErrCodeBackendDown, "down", nil)},
			handle:   "octo",
			expected: errors.ConnectivityMessage,
		},
		{
			name:     "malformed",
			source:   &fakeSource{},
			handle:   "octo",
			expected: backend.MsgPortfolioNotFound,
		},
		{
			name:     "blank handle",
			source:   &fakeSource{},
			handle:   "  ",
			expected: backend.MsgPortfolioNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRenderer(tt.source, nil, nil).Load(context.Background(), tt.handle)
			if v.Status != StatusError {
				t.Errorf("Expected status %s, got %s", StatusError, v.Status)
			}
			if v.Error != tt.expected {
				t.Errorf("Expected error '%s', got '%s'", tt.expected, v.Error)
			}
		})
	}
}

func BenchmarkTopSkills(b *testing.B) {
	projects := []types.Project{
		{Languages: []string{"Go", "Shell", "Dockerfile"}},
		{Languages: []string{"TypeScript", "CSS", "HTML"}},
	}
	resume := []string{"Go", "Kubernetes", "PostgreSQL", "Redis"}
	for b.Loop() {
		TopSkills(resume, projects, MaxSkills)
	}
}
