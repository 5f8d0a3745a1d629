package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"proedualt/internal/backend"
	"proedualt/internal/common"
	"proedualt/internal/config"
	"proedualt/internal/dashboard"
	"proedualt/internal/errors"
	"proedualt/internal/formatters"
	"proedualt/internal/identity"
	"proedualt/internal/interview"
	"proedualt/internal/jobs"
	"proedualt/internal/portfolio"
	"proedualt/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c2a4e-8b7d-4c3e-9a51-2d0f7e6b1c90"

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			BaseURL:       baseURL,
			Timeout:       5 * time.Second,
			UserAgent:     "proedualt-test",
			MaxResumeSize: 1 << 20,
		},
		Session: config.SessionConfig{RefreshMargin: time.Minute},
		App: config.AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func newBackend(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	ctx := context.WithValue(context.Background(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, errors.NewNop())

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// fakeAccounts is an in-memory accountService
type fakeAccounts struct {
	mu      sync.Mutex
	session *identity.Session
	profile *types.Profile
}

func signedIn(profile *types.Profile) *fakeAccounts {
	return &fakeAccounts{
		session: &identity.Session{
			AccessToken: "token",
			ExpiresAt:   time.Now().Add(time.Hour),
			User:        identity.User{ID: uuid.MustParse(testUserID), Email: "ada@example.com"},
		},
		profile: profile,
	}
}

func (f *fakeAccounts) CurrentSession(ctx context.Context) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.Clone(), nil
}

func (f *fakeAccounts) Subscribe(h identity.Handler) func() { return func() {} }

func (f *fakeAccounts) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = nil
	return nil
}

func (f *fakeAccounts) Profile(ctx context.Context, userID string) (*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile.Clone(), nil
}

func (f *fakeAccounts) SignIn(ctx context.Context, identifier, password string) (*identity.Session, error) {
	return nil, errors.NewAuthError(errors.ErrCodeSignInFailed, "sign-in failed", nil)
}

func (f *fakeAccounts) AccessToken(ctx context.Context) string { return "token" }

func (f *fakeAccounts) Close() error { return nil }

func useAccounts(t *testing.T, accounts accountService) {
	t.Helper()
	prev := newAccounts
	newAccounts = func(*config.Config, *errors.Logger) (accountService, error) { return accounts, nil }
	t.Cleanup(func() { newAccounts = prev })
}

// fakeReader feeds scripted lines to an interactive loop
type fakeReader struct {
	lines   []string
	prompts []string
}

func (f *fakeReader) Readline() (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeReader) SetPrompt(prompt string) {
	f.prompts = append(f.prompts, prompt)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, testConfig("http://127.0.0.1:1"), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "proedualt version "+Version)
}

func TestPortfolioCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /portfolio/{handle}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("handle") != "octocat" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Profile not found or is not public."}`))
			return
		}
		_, _ = w.Write([]byte(`{"profile":{"github_username":"octocat","total_xp":40,"resume_skills":["Go"]},
			"projects":[{"repo_name":"hello","repo_url":"https://github.com/octocat/hello","stars":2,"languages":["Go","C"]}]}`))
	})
	cfg := testConfig(newBackend(t, mux).URL)

	tests := []struct {
		name    string
		args    []string
		wantOut []string
		wantErr bool
	}{
		{
			name:    "text",
			args:    []string{"portfolio", "octocat"},
			wantOut: []string{"=== OCTOCAT ===", portfolio.DefaultBio, "Top Skills: Go, C", "hello  ★ 2"},
		},
		{
			name:    "json",
			args:    []string{"portfolio", "octocat", "--format", "json"},
			wantOut: []string{`"status": "ready"`, `"github_url": "https://github.com/octocat"`},
		},
		{
			name:    "not found",
			args:    []string{"portfolio", "ghost"},
			wantOut: []string{"Profile not found or is not public."},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, cfg, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatRejectedBeforeBackendCall(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})
	cfg := testConfig(newBackend(t, mux).URL)

	_, _, err := runCLI(t, cfg, "jobs", "list", "--format", "yaml")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Equal(t, int32(0), calls.Load())
}

func TestJobsCommands(t *testing.T) {
	var scraped atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		if !scraped.Load() {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":7,"title":"Go Developer","company_name":"Gopher Inc","location":"Remote","apply_link":"https://jobs.example/7"}]`))
	})
	mux.HandleFunc("POST /scrape-jobs", func(w http.ResponseWriter, r *http.Request) {
		scraped.Store(true)
		_, _ = w.Write([]byte(`{"message":"Scraped 1 job."}`))
	})
	cfg := testConfig(newBackend(t, mux).URL)

	out, _, err := runCLI(t, cfg, "jobs", "list", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	out, stderr, err := runCLI(t, cfg, "jobs", "scrape")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Scraped 1 job.")
	assert.Contains(t, out, "Go Developer")
	assert.Contains(t, out, "Gopher Inc")
}

func TestAnalyzeByUsername(t *testing.T) {
	var gotHandle string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /analyze", func(w http.ResponseWriter, r *http.Request) {
		gotHandle = r.URL.Query().Get("github_username")
		_, _ = w.Write([]byte(`[{"career":"Backend Developer","score":7.5,"matched_skills":["Go"],"all_required_skills":["Go","SQL"]}]`))
	})
	cfg := testConfig(newBackend(t, mux).URL)

	out, _, err := runCLI(t, cfg, "analyze", "--username", " octocat ")
	require.NoError(t, err)
	assert.Equal(t, "octocat", gotHandle)
	assert.Contains(t, out, "=== CAREER RECOMMENDATIONS: octocat ===")
	assert.Contains(t, out, "1. Backend Developer  (score 75)")
	assert.Contains(t, out, "SQL")
}

func TestStatusCommand(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")

	useAccounts(t, &fakeAccounts{})
	out, _, err := runCLI(t, cfg, "status")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in.\n", out)

	useAccounts(t, signedIn(&types.Profile{}))
	out, _, err = runCLI(t, cfg, "status", "--format", "json")
	require.NoError(t, err)
	var msg types.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msg))
	assert.Contains(t, msg.Message, "ada@example.com")
	assert.Contains(t, msg.Message, testUserID)
}

func TestSignedOutCommandsRequireLogin(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	useAccounts(t, &fakeAccounts{})

	for _, args := range [][]string{{"analyze"}, {"progress"}, {"projects", "sync"}, {"task", "complete", "t1"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := runCLI(t, cfg, args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrNoSession), "Expected ErrNoSession, got %v", err)
		})
	}
}

func TestResolveCareer(t *testing.T) {
	s := dashboard.State{Recommendations: []types.Recommendation{
		{Career: "Backend Developer"},
		{Career: "Data Scientist / ML Engineer"},
	}}

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"Backend Developer", "Backend Developer", false},
		{"  backend developer ", "Backend Developer", false},
		{"2", "Data Scientist / ML Engineer", false},
		{"3", "", true},
		{"0", "", true},
		{"Chef", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := resolveCareer(s, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRunInterview(t *testing.T) {
	var answers []types.InterviewAnswer
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start-interview", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"question_text":"What is a goroutine?"}`))
	})
	mux.HandleFunc("POST /submit-answer", func(w http.ResponseWriter, r *http.Request) {
		var a types.InterviewAnswer
		_ = json.NewDecoder(r.Body).Decode(&a)
		answers = append(answers, a)
		_, _ = w.Write([]byte(`{"feedback":"Clear and correct."}`))
	})
	cfg := testConfig(newBackend(t, mux).URL)
	client := backend.NewClient(cfg.Backend, errors.NewNop(), nil)

	rl := &fakeReader{lines: []string{"9", "2", "   ", "A lightweight thread.", "/next", "/quit"}}
	var out bytes.Buffer
	err := runInterview(context.Background(), interview.NewSession(client, errors.NewNop()), rl, &out, "")
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, interview.MsgSelectCareer)
	assert.Equal(t, 2, strings.Count(text, "What is a goroutine?"))
	assert.Contains(t, text, interview.MsgNoAnswer)
	assert.Contains(t, text, "Clear and correct.")
	require.Len(t, answers, 1)
	assert.Equal(t, "What is a goroutine?", answers[0].Question)
	assert.Equal(t, "A lightweight thread.", answers[0].Answer)
	assert.Contains(t, rl.prompts, "answer> ")
}

func newTestShell(t *testing.T, mux *http.ServeMux, accounts *fakeAccounts) (*shell, *bytes.Buffer) {
	t.Helper()
	cfg := testConfig(newBackend(t, mux).URL)
	logger := errors.NewNop()
	client := backend.NewClient(cfg.Backend, logger, nil)

	var out bytes.Buffer
	ctrl := dashboard.NewController(client, accounts, accounts, dashboard.Options{Logger: logger})
	require.NoError(t, ctrl.Start(context.Background()))
	t.Cleanup(ctrl.Close)

	return &shell{
		ctrl:         ctrl,
		accounts:     accounts,
		portfolios:   portfolio.NewRenderer(client, nil, logger),
		board:        jobs.NewBoard(client, logger),
		files:        common.NewFileProcessor(logger),
		maxResume:    cfg.Backend.MaxResumeSize,
		registry:     formatters.NewFormatterRegistry(),
		out:          &out,
		readPassword: func() (string, error) { return "secret", nil },
	}, &out
}

func TestShellSignedOutLanding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"j1","title":"Data Analyst","company_name":"Numbers","location":"Berlin","apply_link":"https://jobs.example/j1"}]`))
	})
	sh, out := newTestShell(t, mux, &fakeAccounts{})

	rl := &fakeReader{lines: []string{"analyze", "jobs", "dance", "login ada@example.com", "exit"}}
	require.NoError(t, sh.run(context.Background(), rl))

	text := out.String()
	assert.Contains(t, text, "Welcome to ProEduAlt. Sign in with: login <email-or-phone>")
	assert.Contains(t, text, "Please sign in first")
	assert.Contains(t, text, "Data Analyst")
	assert.Contains(t, text, `unknown command "dance"`)
	assert.Contains(t, text, "Error: sign-in failed")
}

func TestShellDashboardFlow(t *testing.T) {
	var saved atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /learning-progress/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"completed_ids":[]}`))
	})
	mux.HandleFunc("POST /learning-progress", func(w http.ResponseWriter, r *http.Request) {
		saved.Add(1)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /analyze/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"career":"Backend Developer","score":7.5,"matched_skills":["Go"],"all_required_skills":["Go","SQL"]}]`))
	})
	mux.HandleFunc("POST /generate-plan", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"plan":[{"id":"t1","title":"Learn SQL","url":"https://sql.example","xp_points":50}]}`))
	})
	sh, out := newTestShell(t, mux, signedIn(&types.Profile{GithubUsername: "ada", TotalXP: 10}))

	rl := &fakeReader{lines: []string{"analyze", "plan backend developer", "done t1", "progress"}}
	require.NoError(t, sh.run(context.Background(), rl))
	sh.ctrl.Wait()

	text := out.String()
	assert.Contains(t, text, "Welcome, ada@example.com")
	assert.Contains(t, text, "1. Backend Developer  (score 75)")
	assert.Contains(t, text, "[ ] t1  Learn SQL (+50 XP)")
	assert.Contains(t, text, "[x] t1")
	assert.Contains(t, text, "  - t1")
	assert.Equal(t, int32(1), saved.Load())
	assert.True(t, sh.ctrl.Snapshot().IsCompleted("t1"))
}
