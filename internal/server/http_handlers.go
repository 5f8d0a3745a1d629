package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"proedualt/internal/backend"
	"proedualt/internal/errors"
	"proedualt/internal/portfolio"
	"proedualt/internal/types"

	"github.com/go-chi/chi/v5"
)

var portfolioPage = template.Must(template.New("portfolio").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{if .Name}}{{.Name}}{{else}}{{.Handle}}{{end}} · Portfolio</title>
</head>
<body>
{{- if .Error}}
<main><p class="error">{{.Error}}</p></main>
{{- else}}
<header>
<h1>{{.Name}}</h1>
<p>{{.Bio}}</p>
<p><a href="{{.GitHubURL}}">GitHub</a>{{if .LinkedinURL}} · <a href="{{.LinkedinURL}}">LinkedIn</a>{{end}}</p>
<p>Total XP: {{.TotalXP}}</p>
</header>
{{- if .Skills}}
<section>
<h2>Top Skills</h2>
<ul>{{range .Skills}}<li>{{.}}</li>{{end}}</ul>
</section>
{{- end}}
<section>
<h2>Projects</h2>
{{- range .Projects}}
<article>
<h3><a href="{{.URL}}">{{.Name}}</a></h3>
<p>{{.Description}}</p>
<p>★ {{.Stars}}{{range .Languages}} · {{.}}{{end}}</p>
</article>
{{- else}}
<p>No projects yet.</p>
{{- end}}
</section>
{{- end}}
</body>
</html>
`))

// healthHandler reports liveness and the backend breaker state
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.breaker.IsHealthy() {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          status,
		"service":         "proedualt",
		"version":         s.Version,
		"circuit_breaker": s.breaker.GetStats(),
	})
}

// statsHandler returns server statistics
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "proedualt",
		"version": s.Version,
	}
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) portfolioPageHandler(w http.ResponseWriter, r *http.Request) {
	view := s.portfolios.Load(r.Context(), chi.URLParam(r, "handle"))

	var buf bytes.Buffer
	if err := portfolioPage.Execute(&buf, view); err != nil {
		s.Logger.LogError(err, "Failed to render portfolio page", "handle", view.Handle)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(viewStatus(view))
	_, _ = buf.WriteTo(w)
}

func (s *Server) portfolioJSONHandler(w http.ResponseWriter, r *http.Request) {
	view := s.portfolios.Load(r.Context(), chi.URLParam(r, "handle"))
	writeJSON(w, viewStatus(view), view)
}

func (s *Server) jobsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.jobs.List(r.Context())
	if err != nil {
		s.Logger.LogError(err, "Failed to list jobs")
		status := http.StatusBadGateway
		if errors.IsConnectivity(err) {
			status = http.StatusServiceUnavailable
		}
		writeErrorResponse(w, "Failed to list jobs", errors.UserMessage(err), status)
		return
	}
	if list == nil {
		list = []types.Job{}
	}
	writeJSON(w, http.StatusOK, list)
}

// viewStatus maps a portfolio view to its HTTP status
func viewStatus(view portfolio.View) int {
	switch {
	case view.Status == portfolio.StatusReady:
		return http.StatusOK
	case view.Error == backend.MsgPortfolioNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a JSON error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}
