// Package dashboard holds the signed-in user's working state: the session,
// the cached profile, the analysis and plan results and the set of
// completed plan items. Commands mutate that state; Snapshot copies it out
// for rendering.
package dashboard

import (
	"context"
	"strings"
	"sync"

	"proedualt/internal/errors"
	"proedualt/internal/identity"
	"proedualt/internal/observability"
	"proedualt/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// Messages for commands refused before reaching the backend
const (
	MsgHandleFirst = "Please save your GitHub username first."
	MsgNoFile      = "Please select a PDF file first."
)

// Response fences, one per command whose result replaces state
const (
	seqProfile  = "profile"
	seqProgress = "progress"
	seqAnalyze  = "analyze"
	seqPlan     = "plan"
)

// Single-flight guards
const (
	flightAnalyze = "analyze"
	flightPlan    = "generatePlan"
	flightProfile = "updateProfile"
	flightResume  = "uploadResume"
	flightSync    = "syncProjects"
)

// Options carries the optional collaborators of a Controller
type Options struct {
	Logger   *errors.Logger
	Metrics  *observability.Metrics
	Notifier Notifier
}

// Controller is safe for concurrent use. No lock is held across a
// backend call.
type Controller struct {
	backend  Backend
	provider identity.Provider
	profiles identity.ProfileSource
	logger   *errors.Logger
	metrics  *observability.Metrics
	notify   Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       State
	seq         map[string]uint64
	inflight    map[string]bool
	known       map[types.ResourceID]struct{}
	generations map[types.ResourceID]uint64
	unsubscribe func()
	closed      bool
}

// NewController wires a controller. Call Start to load the session.
func NewController(be Backend, provider identity.Provider, profiles identity.ProfileSource, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:     be,
		provider:    provider,
		profiles:    profiles,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		notify:      opts.Notifier,
		ctx:         ctx,
		cancel:      cancel,
		seq:         make(map[string]uint64),
		inflight:    make(map[string]bool),
		known:       make(map[types.ResourceID]struct{}),
		generations: make(map[types.ResourceID]uint64),
	}
}

// Start applies the current session synchronously, then subscribes to
// session changes. A provider failure leaves the controller signed out.
func (c *Controller) Start(ctx context.Context) error {
	s, err := c.provider.CurrentSession(ctx)
	if err != nil {
		c.logger.LogError(err, "Could not retrieve session")
		s = nil
	}
	c.handleSessionEvent(identity.Event{Kind: identity.InitialSession, Session: s})

	unsubscribe := c.provider.Subscribe(c.handleSessionEvent)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return errors.ErrClosed
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return nil
}

// Close unsubscribes from session changes and drops every result that
// arrives afterwards. It waits for background toggles to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until background toggles have settled
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Snapshot returns a deep copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SignOut ends the session at the provider. State is cleared by the
// resulting session event.
func (c *Controller) SignOut(ctx context.Context) error {
	return c.provider.SignOut(ctx)
}

func (c *Controller) handleSessionEvent(evt identity.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.state.Session.UserID()
	c.state.Session = evt.Session.Clone()
	if evt.Session == nil || evt.Session.UserID() != prev {
		c.resetUserStateLocked()
	}
	c.mu.Unlock()

	c.logger.Debug("Session event", "kind", evt.Kind.String(), "user_id", evt.Session.UserID())
	if evt.Session == nil {
		return
	}

	if err := c.LoadProfile(c.ctx); err != nil && !errors.Is(err, errors.ErrStaleResponse) {
		c.logger.LogError(err, "Failed to load profile", "user_id", evt.Session.UserID())
	}
	if err := c.LoadProgress(c.ctx); err != nil && !errors.Is(err, errors.ErrStaleResponse) {
		c.logger.LogError(err, "Failed to load learning progress", "user_id", evt.Session.UserID())
	}
}

// resetUserStateLocked forgets everything tied to the previous user and
// invalidates their in-flight responses
func (c *Controller) resetUserStateLocked() {
	session := c.state.Session
	c.state = State{Session: session}
	clear(c.known)
	clear(c.generations)
	for _, key := range []string{seqProfile, seqProgress, seqAnalyze, seqPlan} {
		c.seq[key]++
	}
}

func (c *Controller) beginLocked(key string) uint64 {
	c.seq[key]++
	return c.seq[key]
}

func (c *Controller) currentLocked(key string, token uint64) bool {
	return !c.closed && c.seq[key] == token
}

func (c *Controller) acquire(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrClosed
	}
	if c.inflight[name] {
		return errors.ErrBusy
	}
	c.inflight[name] = true
	return nil
}

func (c *Controller) release(name string) {
	c.mu.Lock()
	delete(c.inflight, name)
	c.mu.Unlock()
}

func (c *Controller) userIDLocked() (string, error) {
	if c.closed {
		return "", errors.ErrClosed
	}
	if c.state.Session == nil {
		return "", errors.ErrNoSession
	}
	return c.state.Session.UserID(), nil
}

func (c *Controller) userID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userIDLocked()
}

func (c *Controller) emit(n Notice) {
	if c.notify != nil {
		c.notify(n)
	}
}

// LoadProfile reads the profile row and seeds the handle field from it.
// A profile without a handle forces edit mode. On failure the cached
// profile is left as it was.
func (c *Controller) LoadProfile(ctx context.Context) error {
	c.mu.Lock()
	userID, err := c.userIDLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	token := c.beginLocked(seqProfile)
	c.mu.Unlock()

	p, err := c.profiles.Profile(ctx, userID)
	if err == nil && p == nil {
		err = errors.NewBackendError(errors.ErrCodeProfileNotFound, "profile not found", nil)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(seqProfile, token) {
		return errors.ErrStaleResponse
	}
	c.state.Profile = p.Clone()
	c.state.HandleInput = p.GithubUsername
	if !p.HasHandle() {
		c.state.Editing = true
	}
	return nil
}

// LoadProgress replaces the completion set with the backend's copy
func (c *Controller) LoadProgress(ctx context.Context) error {
	c.mu.Lock()
	userID, err := c.userIDLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	token := c.beginLocked(seqProgress)
	c.mu.Unlock()

	res, err := c.backend.LearningProgress(ctx, userID)
	if err != nil {
		return err
	}
	if res.IsEmpty() {
		return nil
	}
	ids, err := res.Unwrap()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(seqProgress, token) {
		return errors.ErrStaleResponse
	}
	completed := make([]types.ResourceID, 0, len(ids))
	for _, id := range ids {
		completed = addID(completed, id)
		c.known[id] = struct{}{}
	}
	c.state.Completed = completed
	return nil
}

// SetHandleInput sets the editable handle field
func (c *Controller) SetHandleInput(handle string) {
	c.mu.Lock()
	c.state.HandleInput = handle
	c.mu.Unlock()
}

// BeginEdit switches to edit mode
func (c *Controller) BeginEdit() {
	c.mu.Lock()
	c.state.Editing = true
	c.mu.Unlock()
}

// CancelEdit leaves edit mode and restores the stored handle. A profile
// without a handle stays in edit mode.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Profile.HasHandle() {
		return
	}
	c.state.Editing = false
	c.state.HandleInput = c.state.Profile.GithubUsername
}

// SaveHandle saves the handle field, carrying the other cached profile
// fields along so that they are not blanked. Only the handle is checked:
// the carried fields are whatever the backend already stores.
func (c *Controller) SaveHandle(ctx context.Context) error {
	c.mu.Lock()
	userID, err := c.userIDLocked()
	handle := strings.TrimSpace(c.state.HandleInput)
	profile := c.state.Profile.Clone()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if err := ValidateHandle(handle); err != nil {
		return err
	}

	update := types.UpdateFromProfile(userID, profile)
	update.GithubUsername = handle
	return c.submitProfile(ctx, update)
}

// UpdateProfile sends the full field set. Local state only changes
// through the re-read that follows a confirmed update.
func (c *Controller) UpdateProfile(ctx context.Context, update types.ProfileUpdate) error {
	userID, err := c.userID()
	if err != nil {
		return err
	}
	update.UserID = userID
	update.GithubUsername = strings.TrimSpace(update.GithubUsername)
	if err := ValidateStruct(update); err != nil {
		return err
	}
	return c.submitProfile(ctx, update)
}

func (c *Controller) submitProfile(ctx context.Context, update types.ProfileUpdate) error {
	if err := c.acquire(flightProfile); err != nil {
		return err
	}
	defer c.release(flightProfile)

	res, err := c.backend.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	if _, err := res.Unwrap(); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Editing = false
	c.mu.Unlock()

	c.logger.Info("Profile updated", "user_id", update.UserID)
	c.reloadProfile(ctx)
	return nil
}

// UploadResume submits a resume and returns the skills the backend found
func (c *Controller) UploadResume(ctx context.Context, filename string, content []byte) ([]string, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, MsgNoFile, nil)
	}

	if err := c.acquire(flightResume); err != nil {
		return nil, err
	}
	defer c.release(flightResume)

	res, err := c.backend.UploadResume(ctx, userID, filename, content)
	if err != nil {
		return nil, err
	}
	result, err := res.Unwrap()
	if err != nil {
		return nil, err
	}

	c.logger.Info("Resume processed", "user_id", userID, "skills", len(result.SkillsFound))
	c.reloadProfile(ctx)
	return result.SkillsFound, nil
}

// SyncProjects asks the backend to pull the user's GitHub projects
func (c *Controller) SyncProjects(ctx context.Context) (string, error) {
	userID, err := c.userID()
	if err != nil {
		return "", err
	}
	if err := c.acquire(flightSync); err != nil {
		return "", err
	}
	defer c.release(flightSync)

	res, err := c.backend.SyncProjects(ctx, userID)
	if err != nil {
		return "", err
	}
	msg, err := res.Unwrap()
	if err != nil {
		return "", err
	}
	c.reloadProfile(ctx)
	return msg, nil
}

// reloadProfile re-reads the profile after a mutation; failures are logged
func (c *Controller) reloadProfile(ctx context.Context) {
	if err := c.LoadProfile(ctx); err != nil && !errors.Is(err, errors.ErrStaleResponse) {
		c.logger.LogError(err, "Failed to refresh profile")
	}
}

// recordMetric is a small helper around the business counters
func (c *Controller) recordMetric(ctx context.Context, metricType string, success bool, attrs ...attribute.KeyValue) {
	c.metrics.RecordBusinessMetric(ctx, metricType, success, attrs...)
}
