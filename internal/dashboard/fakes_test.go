package dashboard

import (
	"context"
	"sync"

	"proedualt/internal/backend"
	"proedualt/internal/errors"
	"proedualt/internal/identity"
	"proedualt/internal/types"

	"github.com/google/uuid"
)

var testUserID = uuid.MustParse("5f0c4b8e-2d7a-4c1e-9a53-0c8d7e6f1a2b")

func testSession() *identity.Session {
	return &identity.Session{
		AccessToken: "token",
		User:        identity.User{ID: testUserID, Email: "dev@example.com"},
	}
}

func ok[T any](v T) backend.Result[T] {
	return backend.Result[T]{Outcome: backend.OK, Value: v}
}

func rejected[T any](msg string) backend.Result[T] {
	return backend.Result[T]{Outcome: backend.Err, Message: msg}
}

func connectivityErr() error {
	return errors.NewNetworkError(errors.ErrCodeBackendDown, "backend unreachable", nil)
}

// fakeProvider delivers events synchronously on the publishing goroutine
type fakeProvider struct {
	mu       sync.Mutex
	session  *identity.Session
	err      error
	handlers map[int]identity.Handler
	next     int
}

func newFakeProvider(s *identity.Session) *fakeProvider {
	return &fakeProvider{session: s, handlers: make(map[int]identity.Handler)}
}

func (p *fakeProvider) CurrentSession(ctx context.Context) (*identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Clone(), p.err
}

func (p *fakeProvider) Subscribe(h identity.Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	p.handlers[id] = h
	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) SignOut(ctx context.Context) error {
	p.publish(identity.Event{Kind: identity.SignedOut})
	return nil
}

func (p *fakeProvider) subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handlers)
}

func (p *fakeProvider) publish(evt identity.Event) {
	p.mu.Lock()
	p.session = evt.Session.Clone()
	handlers := make([]identity.Handler, 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h(evt)
	}
}

type fakeProfiles struct {
	mu      sync.Mutex
	profile *types.Profile
	err     error
	calls   int

	// byUser, when set, answers instead of profile; it runs unlocked
	byUser func(userID string) *types.Profile
}

func (f *fakeProfiles) Profile(ctx context.Context, userID string) (*types.Profile, error) {
	f.mu.Lock()
	f.calls++
	byUser := f.byUser
	f.mu.Unlock()
	if byUser != nil {
		return byUser(userID).Clone(), nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.profile.Clone(), nil
}

func (f *fakeProfiles) answer(fn func(userID string) *types.Profile) {
	f.mu.Lock()
	f.byUser = fn
	f.mu.Unlock()
}

func (f *fakeProfiles) set(p *types.Profile) {
	f.mu.Lock()
	f.profile = p
	f.mu.Unlock()
}

func (f *fakeProfiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeBackend answers from function fields; unset fields succeed with zero values
type fakeBackend struct {
	mu            sync.Mutex
	progressCalls int
	updates       []types.ProfileUpdate
	progress      []types.ProgressUpdate

	learningProgress func(ctx context.Context) (backend.Result[[]types.ResourceID], error)
	setProgress      func(ctx context.Context, u types.ProgressUpdate) (backend.Result[struct{}], error)
	uploadResume     func(ctx context.Context) (backend.Result[types.ResumeResult], error)
	updateProfile    func(ctx context.Context, u types.ProfileUpdate) (backend.Result[struct{}], error)
	analyze          func(ctx context.Context) (backend.Result[[]types.Recommendation], error)
	generatePlan     func(ctx context.Context, rec types.Recommendation) (backend.Result[[]types.PlanItem], error)
	syncProjects     func(ctx context.Context) (backend.Result[string], error)
}

func (f *fakeBackend) LearningProgress(ctx context.Context, userID string) (backend.Result[[]types.ResourceID], error) {
	f.mu.Lock()
	f.progressCalls++
	fn := f.learningProgress
	f.mu.Unlock()
	if fn == nil {
		return ok([]types.ResourceID{}), nil
	}
	return fn(ctx)
}

func (f *fakeBackend) SetProgress(ctx context.Context, u types.ProgressUpdate) (backend.Result[struct{}], error) {
	f.mu.Lock()
	f.progress = append(f.progress, u)
	fn := f.setProgress
	f.mu.Unlock()
	if fn == nil {
		return ok(struct{}{}), nil
	}
	return fn(ctx, u)
}

func (f *fakeBackend) UploadResume(ctx context.Context, userID, filename string, content []byte) (backend.Result[types.ResumeResult], error) {
	if f.uploadResume == nil {
		return ok(types.ResumeResult{}), nil
	}
	return f.uploadResume(ctx)
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, u types.ProfileUpdate) (backend.Result[struct{}], error) {
	f.mu.Lock()
	f.updates = append(f.updates, u)
	fn := f.updateProfile
	f.mu.Unlock()
	if fn == nil {
		return ok(struct{}{}), nil
	}
	return fn(ctx, u)
}

func (f *fakeBackend) Analyze(ctx context.Context, userID string) (backend.Result[[]types.Recommendation], error) {
	if f.analyze == nil {
		return ok([]types.Recommendation{}), nil
	}
	return f.analyze(ctx)
}

func (f *fakeBackend) GeneratePlan(ctx context.Context, rec types.Recommendation) (backend.Result[[]types.PlanItem], error) {
	if f.generatePlan == nil {
		return ok([]types.PlanItem{}), nil
	}
	return f.generatePlan(ctx, rec)
}

func (f *fakeBackend) SyncProjects(ctx context.Context, userID string) (backend.Result[string], error) {
	if f.syncProjects == nil {
		return ok("Projects synced."), nil
	}
	return f.syncProjects(ctx)
}

func (f *fakeBackend) progressCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progressCalls
}
