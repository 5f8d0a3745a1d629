// Package portfolio loads and shapes the public portfolio page of a user.
package portfolio

import (
	"context"
	"net/url"
	"strings"

	"proedualt/internal/backend"
	"proedualt/internal/errors"
	"proedualt/internal/observability"
	"proedualt/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// MaxSkills bounds the "Top Skills" list
	MaxSkills = 15

	DefaultBio         = "A passionate developer exploring the world of technology."
	DefaultDescription = "No description available."
)

// Status is the load state of a portfolio page
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Source fetches the combined profile and projects document.
// *backend.Client satisfies it.
type Source interface {
	Portfolio(ctx context.Context, handle string) (backend.Result[types.Portfolio], error)
}

// Project is a project ready for display
type Project struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Stars       int      `json:"stars"`
	Languages   []string `json:"languages"`
}

// View is everything a portfolio page shows
type View struct {
	Handle      string    `json:"handle"`
	Status      Status    `json:"-"`
	State       string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Name        string    `json:"name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	GitHubURL   string    `json:"github_url,omitempty"`
	LinkedinURL string    `json:"linkedin_url,omitempty"`
	TotalXP     int       `json:"total_xp"`
	Skills      []string  `json:"skills,omitempty"`
	Projects    []Project `json:"projects,omitempty"`
}

// Renderer turns portfolio documents into views
type Renderer struct {
	source  Source
	metrics *observability.Metrics
	logger  *errors.Logger
}

// NewRenderer creates a renderer
func NewRenderer(source Source, metrics *observability.Metrics, logger *errors.Logger) *Renderer {
	return &Renderer{source: source, metrics: metrics, logger: logger}
}

// Loading returns the placeholder view shown while a load is pending
func Loading(handle string) View {
	return View{Handle: handle, Status: StatusLoading, State: StatusLoading.String()}
}

// Load fetches and shapes the portfolio of handle. Failures produce an
// error view, never a Go error: the page always has something to show.
func (r *Renderer) Load(ctx context.Context, handle string) View {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return failed(handle, backend.MsgPortfolioNotFound)
	}

	res, err := r.source.Portfolio(ctx, handle)
	if err != nil {
		r.logger.LogError(err, "Portfolio fetch failed", "handle", handle)
		r.metrics.RecordBusinessMetric(ctx, observability.MetricPortfolioView, false)
		return failed(handle, errors.UserMessage(err))
	}

	switch {
	case res.IsOK():
		r.metrics.RecordBusinessMetric(ctx, observability.MetricPortfolioView, true,
			attribute.Int("projects", len(res.Value.Projects)))
		return Build(handle, res.Value)
	case res.IsErr():
		r.metrics.RecordBusinessMetric(ctx, observability.MetricPortfolioView, false)
		return failed(handle, res.Message)
	default:
		r.metrics.RecordBusinessMetric(ctx, observability.MetricPortfolioView, false)
		return failed(handle, backend.MsgPortfolioNotFound)
	}
}

func failed(handle, msg string) View {
	return View{Handle: handle, Status: StatusError, State: StatusError.String(), Error: msg}
}

// Build shapes a fetched document into a ready view
func Build(handle string, doc types.Portfolio) View {
	p := doc.Profile
	v := View{
		Handle:      handle,
		Status:      StatusReady,
		State:       StatusReady.String(),
		Name:        p.FullName,
		Bio:         p.Bio,
		GitHubURL:   "https://github.com/" + url.PathEscape(handle),
		LinkedinURL: p.LinkedinURL,
		TotalXP:     p.TotalXP,
		Skills:      TopSkills(p.ResumeSkills, doc.Projects, MaxSkills),
		Projects:    make([]Project, 0, len(doc.Projects)),
	}
	if v.Name == "" {
		v.Name = handle
	}
	if v.Bio == "" {
		v.Bio = DefaultBio
	}

	for _, proj := range doc.Projects {
		desc := proj.Description
		if desc == "" {
			desc = DefaultDescription
		}
		v.Projects = append(v.Projects, Project{
			Name:        proj.RepoName,
			URL:         proj.RepoURL,
			Description: desc,
			Stars:       proj.Stars,
			Languages:   append([]string(nil), proj.Languages...),
		})
	}
	return v
}

// TopSkills is the union of resume skills and project languages in first
// seen order, without duplicates or blanks, cut at limit. A negative
// limit is treated as zero.
func TopSkills(resumeSkills []string, projects []types.Project, limit int) []string {
	limit = max(limit, 0)
	seen := make(map[string]struct{})
	out := make([]string, 0, limit)

	add := func(skill string) bool {
		if skill == "" {
			return true
		}
		if _, ok := seen[skill]; ok {
			return true
		}
		if len(out) >= limit {
			return false
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
		return true
	}

	for _, s := range resumeSkills {
		if !add(s) {
			return out
		}
	}
	for _, proj := range projects {
		for _, lang := range proj.Languages {
			if !add(lang) {
				return out
			}
		}
	}
	return out
}
