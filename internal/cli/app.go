package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"proedualt/internal/backend"
	"proedualt/internal/config"
	"proedualt/internal/dashboard"
	"proedualt/internal/errors"
	"proedualt/internal/identity"
	"proedualt/internal/observability"
)

// accountService is what the commands need from the identity layer.
// *identity.Manager satisfies it.
type accountService interface {
	identity.Provider
	identity.ProfileSource
	SignIn(ctx context.Context, identifier, password string) (*identity.Session, error)
	AccessToken(ctx context.Context) string
	Close() error
}

// app holds the collaborators shared by a single command invocation
type app struct {
	cfg      *config.Config
	logger   *errors.Logger
	om       *observability.ObservabilityManager
	client   *backend.Client
	accounts accountService
}

// newAccounts builds the identity layer. Tests replace it.
var newAccounts = func(cfg *config.Config, logger *errors.Logger) (accountService, error) {
	m, err := identity.NewSupabaseManager(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := m.Start(); err != nil {
		return nil, err
	}
	return m, nil
}

// newApp wires the backend client and, when withAccounts is set, the
// signed-in session
func newApp(ctx context.Context, withAccounts bool) (*app, error) {
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	om, err := observability.NewObservabilityManager(cfg.Observability, Version)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize observability", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		om:     om,
		client: backend.NewClient(cfg.Backend, logger, om),
	}

	if withAccounts {
		accounts, err := newAccounts(cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.accounts = accounts
		a.client.SetTokenSource(accounts.AccessToken)
	}
	return a, nil
}

// Close releases the session watcher and flushes telemetry
func (a *app) Close() {
	if a.accounts != nil {
		if err := a.accounts.Close(); err != nil {
			a.logger.LogError(err, "Failed to close session manager")
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.om.Shutdown(ctx); err != nil {
		a.logger.LogError(err, "Failed to shutdown observability")
	}
}

// dashboard starts a controller on the current session. Notices are
// written to notices.
func (a *app) dashboard(ctx context.Context, notices io.Writer) (*dashboard.Controller, error) {
	ctrl := dashboard.NewController(a.client, a.accounts, a.accounts, dashboard.Options{
		Logger:  a.logger,
		Metrics: a.om.Metrics(),
		Notifier: func(n dashboard.Notice) {
			fmt.Fprintf(notices, "[%s] %s\n", n.Level, n.Message)
		},
	})
	if err := ctrl.Start(ctx); err != nil {
		ctrl.Close()
		return nil, err
	}
	return ctrl, nil
}

// signedInDashboard is dashboard that fails when nobody is signed in
func (a *app) signedInDashboard(ctx context.Context, notices io.Writer) (*dashboard.Controller, error) {
	ctrl, err := a.dashboard(ctx, notices)
	if err != nil {
		return nil, err
	}
	if !ctrl.Snapshot().SignedIn() {
		ctrl.Close()
		return nil, errors.NewAuthError(errors.ErrCodeNotSignedIn, "not signed in, run `proedualt login` first", errors.ErrNoSession)
	}
	return ctrl, nil
}

// phaseError turns a failure recorded in the dashboard state into an error
// so the process exits non-zero after the state is printed
func phaseError(s dashboard.State) error {
	switch s.Phase {
	case dashboard.PhaseAnalysisError:
		return errors.NewBackendError(errors.ErrCodeBackendRejected, s.AnalysisError, nil)
	case dashboard.PhasePlanError:
		return errors.NewBackendError(errors.ErrCodeBackendRejected, s.PlanError, nil)
	}
	return nil
}
