package dashboard

import (
	"context"

	"proedualt/internal/backend"
	"proedualt/internal/types"
)

// Backend is the part of the backend API the dashboard drives.
// *backend.Client satisfies it.
type Backend interface {
	LearningProgress(ctx context.Context, userID string) (backend.Result[[]types.ResourceID], error)
	SetProgress(ctx context.Context, update types.ProgressUpdate) (backend.Result[struct{}], error)
	UploadResume(ctx context.Context, userID, filename string, content []byte) (backend.Result[types.ResumeResult], error)
	UpdateProfile(ctx context.Context, update types.ProfileUpdate) (backend.Result[struct{}], error)
	Analyze(ctx context.Context, userID string) (backend.Result[[]types.Recommendation], error)
	GeneratePlan(ctx context.Context, rec types.Recommendation) (backend.Result[[]types.PlanItem], error)
	SyncProjects(ctx context.Context, userID string) (backend.Result[string], error)
}

// Notifier receives non-blocking notices such as a rolled back toggle
type Notifier func(Notice)

// NoticeLevel classifies a notice
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a message for the user that does not interrupt the current command
type Notice struct {
	Level   NoticeLevel
	Message string
}
