// Package jobs keeps the list of scraped job postings.
package jobs

import (
	"context"
	"slices"
	"sync"

	"proedualt/internal/backend"
	"proedualt/internal/errors"
	"proedualt/internal/types"
)

// Source is the job endpoints of the backend. *backend.Client satisfies it.
type Source interface {
	Jobs(ctx context.Context) (backend.Result[[]types.Job], error)
	ScrapeJobs(ctx context.Context) (backend.Result[string], error)
}

// Board caches the latest job list
type Board struct {
	source Source
	logger *errors.Logger

	mu       sync.Mutex
	jobs     []types.Job
	scraping bool
}

// NewBoard creates an empty board
func NewBoard(source Source, logger *errors.Logger) *Board {
	return &Board{source: source, logger: logger}
}

// Jobs returns the cached list
func (b *Board) Jobs() []types.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.jobs)
}

// List fetches the current postings and caches them. A payload that is
// not a list leaves an empty board.
func (b *Board) List(ctx context.Context) ([]types.Job, error) {
	res, err := b.source.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	if res.IsErr() {
		_, err := res.Unwrap()
		return nil, err
	}

	jobs := res.Value
	if res.IsEmpty() {
		b.logger.Warn("Job list payload was not a list")
		jobs = nil
	}

	b.mu.Lock()
	b.jobs = slices.Clone(jobs)
	b.mu.Unlock()
	return slices.Clone(jobs), nil
}

// Scrape asks the backend to fetch new postings and then refreshes the
// list. The backend's message is returned whether it reports success or
// failure; only one scrape runs at a time.
func (b *Board) Scrape(ctx context.Context) (string, []types.Job, error) {
	b.mu.Lock()
	if b.scraping {
		b.mu.Unlock()
		return "", nil, errors.ErrBusy
	}
	b.scraping = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.scraping = false
		b.mu.Unlock()
	}()

	res, err := b.source.ScrapeJobs(ctx)
	if err != nil {
		return "", nil, err
	}
	msg := res.Value
	if res.IsErr() {
		msg = res.Message
	}
	b.logger.Info("Job scrape finished", "outcome", res.Outcome.String())

	jobs, err := b.List(ctx)
	if err != nil {
		return msg, nil, err
	}
	return msg, jobs, nil
}
