package server

import (
	"fmt"
	"io"
	"net"
)

// DisplayServerInfo writes the endpoint list and limits to w
func (s *Server) DisplayServerInfo(w io.Writer) {
	fmt.Fprintf(w, "Serving portfolios on http://%s\n", net.JoinHostPort(displayHost(s.Host), s.Port))
	fmt.Fprintln(w, "Available endpoints:")
	fmt.Fprintln(w, "  GET  /health                   - Health check")
	fmt.Fprintln(w, "  GET  /stats                    - Server statistics")
	fmt.Fprintln(w, "  GET  /p/{handle}               - Portfolio page")
	fmt.Fprintln(w, "  GET  /api/portfolio/{handle}   - Portfolio as JSON")
	fmt.Fprintln(w, "  GET  /api/jobs                 - Job listings")
	if s.om.MetricsHandler() != nil {
		fmt.Fprintln(w, "  GET  /metrics                  - Prometheus metrics")
	}

	if s.RateLimiter != nil {
		fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min per IP, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	} else {
		fmt.Fprintln(w, "Rate limiting: DISABLED")
	}
}

func displayHost(host string) string {
	if host == "" || host == "0.0.0.0" {
		return "localhost"
	}
	return host
}
