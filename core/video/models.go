package video

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tawaslapp/tawasl/core"
)

type VideoAnalysis struct {
	ID                    int       `json:"id"`
	UserID                int       `json:"userId"`
	Scenario              string    `json:"scenario"`
	OverallScore          int       `json:"overallScore"`
	EyeContactScore       int       `json:"eyeContactScore"`
	FacialExpressionScore int       `json:"facialExpressionScore"`
	GestureScore          int       `json:"gestureScore"`
	PostureScore          int       `json:"postureScore"`
	Feedback              []string  `json:"feedback"`
	CreatedAt             time.Time `json:"createdAt"` // UTC
}

// AnalysisResult is what the analysis backend reports for a video.
type AnalysisResult struct {
	OverallScore          int      `json:"overallScore"`
	EyeContactScore       int      `json:"eyeContactScore"`
	FacialExpressionScore int      `json:"facialExpressionScore"`
	GestureScore          int      `json:"gestureScore"`
	PostureScore          int      `json:"postureScore"`
	Feedback              []string `json:"feedback"`
}

// Analyzer scores a raw video recording. Implementations are expected to
// honor ctx cancellation since analysis can take minutes.
type Analyzer interface {
	Analyze(ctx context.Context, videoData []byte, scenario string, duration int) (AnalysisResult, error)
}

// NewVideoAnalysis is a recording submitted for analysis.
// VideoData is the base64-encoded recording.
type NewVideoAnalysis struct {
	VideoData     string `json:"videoData" validate:"required"`
	Scenario      string `json:"scenario" validate:"required"`
	Duration      int    `json:"duration" validate:"omitempty,min=0"`
	VideoMimeType string `json:"videoMimeType"`
}

func (nva *NewVideoAnalysis) Validate(validate *validator.Validate) error {
	nva.Scenario = core.CleanString(nva.Scenario)
	nva.VideoMimeType = core.CleanString(nva.VideoMimeType)
	return validate.Struct(nva)
}

type (
	Repository interface {
		CreateAnalysis(ctx context.Context, va VideoAnalysis) (VideoAnalysis, error)
		// QueryAnalysesByUser returns analyses newest-first.
		QueryAnalysesByUser(ctx context.Context, userID int) ([]VideoAnalysis, error)
	}
)
