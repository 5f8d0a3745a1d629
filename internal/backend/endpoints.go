package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"proedualt/internal/types"
)

// Default messages for failures the backend does not describe
const (
	MsgUploadFailed       = "Failed to upload resume."
	MsgUpdateFailed       = "Failed to update profile."
	MsgPortfolioNotFound  = "Profile not found or is not public."
	MsgInterviewFailed    = "Failed to start interview."
	MsgFeedbackFailed     = "Failed to get feedback."
	MsgScrapeFailed       = "An error occurred while scraping jobs."
	MsgSyncProjectsFailed = "Failed to sync projects."
)

func jsonBody(v any) func() (io.Reader, string, error) {
	return func() (io.Reader, string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// failure picks the message for a non-2xx response
func failure(resp *response, fallback string) string {
	if msg, ok := businessError(resp.body); ok {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return statusMessage(resp.status)
}

// LearningProgress fetches the ids of completed plan items
func (c *Client) LearningProgress(ctx context.Context, userID string) (Result[[]types.ResourceID], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/learning-progress/{userId}",
		path:     "/learning-progress/" + url.PathEscape(userID),
	})
	if err != nil {
		return Result[[]types.ResourceID]{}, err
	}
	if !resp.ok() {
		return errResult[[]types.ResourceID](failure(resp, "")), nil
	}
	return decodeListField[types.ResourceID](resp.body, "completed_ids"), nil
}

// SetProgress upserts one completion record
func (c *Client) SetProgress(ctx context.Context, update types.ProgressUpdate) (Result[struct{}], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/learning-progress",
		path:     "/learning-progress",
		body:     jsonBody(update),
	})
	if err != nil {
		return Result[struct{}]{}, err
	}
	if !resp.ok() {
		return errResult[struct{}](failure(resp, "")), nil
	}
	if msg, ok := businessError(resp.body); ok {
		return errResult[struct{}](msg), nil
	}
	return okResult(struct{}{}), nil
}

// UploadResume submits a résumé file as multipart field "file"
func (c *Client) UploadResume(ctx context.Context, userID, filename string, content []byte) (Result[types.ResumeResult], error) {
	build := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", filepath.Base(filename))
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(content); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}

	resp, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/upload-resume/{userId}",
		path:     "/upload-resume/" + url.PathEscape(userID),
		body:     build,
	})
	if err != nil {
		return Result[types.ResumeResult]{}, err
	}
	if !resp.ok() {
		return errResult[types.ResumeResult](failure(resp, MsgUploadFailed)), nil
	}

	// A 2xx is success even when the body lists no skills.
	var result types.ResumeResult
	_ = json.Unmarshal(resp.body, &result)
	return okResult(result), nil
}

// UpdateProfile upserts profile fields; success requires an explicit flag
func (c *Client) UpdateProfile(ctx context.Context, update types.ProfileUpdate) (Result[struct{}], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/profile/update",
		path:     "/profile/update",
		body:     jsonBody(update),
	})
	if err != nil {
		return Result[struct{}]{}, err
	}

	var ack struct {
		Success bool `json:"success"`
	}
	if resp.ok() && json.Unmarshal(resp.body, &ack) == nil && ack.Success {
		return okResult(struct{}{}), nil
	}
	return errResult[struct{}](failure(resp, MsgUpdateFailed)), nil
}

// Analyze runs the scoring pass for a signed-in user
func (c *Client) Analyze(ctx context.Context, userID string) (Result[[]types.Recommendation], error) {
	return c.analyze(ctx, request{
		method:   http.MethodGet,
		endpoint: "/analyze/{userId}",
		path:     "/analyze/" + url.PathEscape(userID),
	})
}

// AnalyzeByHandle runs the scoring pass for a GitHub username
func (c *Client) AnalyzeByHandle(ctx context.Context, handle string) (Result[[]types.Recommendation], error) {
	return c.analyze(ctx, request{
		method:   http.MethodGet,
		endpoint: "/analyze",
		path:     "/analyze",
		query:    url.Values{"github_username": {handle}},
	})
}

func (c *Client) analyze(ctx context.Context, req request) (Result[[]types.Recommendation], error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return Result[[]types.Recommendation]{}, err
	}
	result := decodeList[types.Recommendation](resp.body)
	if !resp.ok() && !result.IsErr() {
		return errResult[[]types.Recommendation](statusMessage(resp.status)), nil
	}
	return result, nil
}

// GeneratePlan produces a learning plan for a recommendation
func (c *Client) GeneratePlan(ctx context.Context, rec types.Recommendation) (Result[[]types.PlanItem], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/generate-plan",
		path:     "/generate-plan",
		body: jsonBody(types.PlanRequest{
			UserSkills:   rec.MatchedSkills,
			TargetCareer: rec,
		}),
	})
	if err != nil {
		return Result[[]types.PlanItem]{}, err
	}
	result := decodeListField[types.PlanItem](resp.body, "plan")
	if !resp.ok() && !result.IsErr() {
		return errResult[[]types.PlanItem](statusMessage(resp.status)), nil
	}
	return result, nil
}

// Jobs lists job postings
func (c *Client) Jobs(ctx context.Context) (Result[[]types.Job], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/jobs",
		path:     "/jobs",
	})
	if err != nil {
		return Result[[]types.Job]{}, err
	}
	result := decodeList[types.Job](resp.body)
	if !resp.ok() && !result.IsErr() {
		return errResult[[]types.Job](statusMessage(resp.status)), nil
	}
	return result, nil
}

// ScrapeJobs triggers a refresh of job postings
func (c *Client) ScrapeJobs(ctx context.Context) (Result[string], error) {
	return c.message(ctx, request{
		method:   http.MethodPost,
		endpoint: "/scrape-jobs",
		path:     "/scrape-jobs",
	}, MsgScrapeFailed)
}

// SyncProjects pulls and caches the user's GitHub projects
func (c *Client) SyncProjects(ctx context.Context, userID string) (Result[string], error) {
	return c.message(ctx, request{
		method:   http.MethodPost,
		endpoint: "/sync-projects/{userId}",
		path:     "/sync-projects/" + url.PathEscape(userID),
	}, MsgSyncProjectsFailed)
}

// message handles endpoints that answer {message} or {detail}
func (c *Client) message(ctx context.Context, req request, fallback string) (Result[string], error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return Result[string]{}, err
	}
	if !resp.ok() {
		return errResult[string](failure(resp, fallback)), nil
	}
	result := decodeObject[types.Message](resp.body, "message")
	switch result.Outcome {
	case OK:
		return okResult(result.Value.Message), nil
	case Err:
		return errResult[string](result.Message), nil
	default:
		return emptyResult[string](), nil
	}
}

// Portfolio fetches the combined public profile and projects document
func (c *Client) Portfolio(ctx context.Context, handle string) (Result[types.Portfolio], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: "/portfolio/{handle}",
		path:     "/portfolio/" + url.PathEscape(handle),
	})
	if err != nil {
		return Result[types.Portfolio]{}, err
	}
	if !resp.ok() {
		return errResult[types.Portfolio](failure(resp, MsgPortfolioNotFound)), nil
	}
	return decodeObject[types.Portfolio](resp.body, "profile"), nil
}

// StartInterview asks for a question for a career path
func (c *Client) StartInterview(ctx context.Context, careerPath string) (Result[types.Question], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/start-interview",
		path:     "/start-interview",
		body:     jsonBody(types.InterviewStart{CareerPath: careerPath}),
	})
	if err != nil {
		return Result[types.Question]{}, err
	}
	if !resp.ok() {
		return errResult[types.Question](failure(resp, MsgInterviewFailed)), nil
	}
	return decodeObject[types.Question](resp.body, "question_text"), nil
}

// SubmitAnswer sends an answer and returns graded feedback
func (c *Client) SubmitAnswer(ctx context.Context, answer types.InterviewAnswer) (Result[types.Feedback], error) {
	resp, err := c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: "/submit-answer",
		path:     "/submit-answer",
		body:     jsonBody(answer),
	})
	if err != nil {
		return Result[types.Feedback]{}, err
	}
	if !resp.ok() {
		return errResult[types.Feedback](failure(resp, MsgFeedbackFailed)), nil
	}
	return decodeObject[types.Feedback](resp.body, "feedback"), nil
}
