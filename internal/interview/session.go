// Package interview runs a mock interview: pick a career, answer the
// generated question, read the feedback, ask for the next question.
package interview

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"proedualt/internal/backend"
	"proedualt/internal/errors"
	"proedualt/internal/types"
)

// Careers are the paths the interviewer knows
var Careers = []string{
	"Frontend Developer",
	"Backend Developer",
	"Data Scientist / ML Engineer",
}

const (
	MsgSelectCareer = "Please select a career path first."
	MsgNoAnswer     = "Please provide an answer."
	MsgNotStarted   = "Start an interview first."
)

// Source is the interview endpoints of the backend.
// *backend.Client satisfies it.
type Source interface {
	StartInterview(ctx context.Context, careerPath string) (backend.Result[types.Question], error)
	SubmitAnswer(ctx context.Context, answer types.InterviewAnswer) (backend.Result[types.Feedback], error)
}

// Stage is where the interview stands
type Stage int

const (
	StageSelecting Stage = iota
	StageAnswering
	StageReviewed
)

func (s Stage) String() string {
	switch s {
	case StageSelecting:
		return "selecting"
	case StageAnswering:
		return "answering"
	case StageReviewed:
		return "reviewed"
	default:
		return "unknown"
	}
}

// State is a copy of the interview's progress
type State struct {
	Stage    Stage
	Career   string
	Question string
	Feedback string
}

// Session is one mock interview. It is safe for concurrent use; a call
// made while another is pending returns ErrBusy.
type Session struct {
	source Source
	logger *errors.Logger

	mu    sync.Mutex
	state State
	busy  bool
}

// NewSession creates a session in the selecting stage
func NewSession(source Source, logger *errors.Logger) *Session {
	return &Session{source: source, logger: logger}
}

// ResolveCareer matches input against Careers, by name (any case) or by
// 1-based position
func ResolveCareer(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for i, c := range Careers {
		if strings.EqualFold(c, input) || input == strconv.Itoa(i+1) {
			return c, true
		}
	}
	return "", false
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return errors.ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Start asks for a question for career. A failed start keeps the
// previous state.
func (s *Session) Start(ctx context.Context, career string) (string, error) {
	if !slices.Contains(Careers, career) {
		msg := MsgSelectCareer
		if career != "" {
			msg = "Unknown career path: " + career
		}
		return "", errors.NewValidationError(errors.ErrCodeUnknownCareer, msg, nil)
	}
	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	res, err := s.source.StartInterview(ctx, career)
	if err != nil {
		return "", err
	}
	q, err := res.Unwrap()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.state = State{Stage: StageAnswering, Career: career, Question: q.Text}
	s.mu.Unlock()

	s.logger.Debug("Interview question received", "career", career)
	return q.Text, nil
}

// Submit sends an answer to the current question and returns the feedback
func (s *Session) Submit(ctx context.Context, answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, MsgNoAnswer, nil)
	}

	s.mu.Lock()
	question := s.state.Question
	s.mu.Unlock()
	if question == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, MsgNotStarted, nil)
	}

	if err := s.acquire(); err != nil {
		return "", err
	}
	defer s.release()

	res, err := s.source.SubmitAnswer(ctx, types.InterviewAnswer{Question: question, Answer: answer})
	if err != nil {
		return "", err
	}
	fb, err := res.Unwrap()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.state.Question == question {
		s.state.Stage = StageReviewed
		s.state.Feedback = fb.Text
	}
	s.mu.Unlock()
	return fb.Text, nil
}

// Next asks for another question for the same career
func (s *Session) Next(ctx context.Context) (string, error) {
	s.mu.Lock()
	career := s.state.Career
	s.mu.Unlock()
	if career == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, MsgNotStarted, nil)
	}
	return s.Start(ctx, career)
}
