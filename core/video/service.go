package video

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
)

// FailedAnalysisFeedback is stored when the analysis backend is
// unreachable or rejects the video; the zero scores make the failure
// visible to the client without turning it into a request error.
const FailedAnalysisFeedback = "Analysis failed. Please ensure your video contains a clear view of one person."

var (
	// errors
	ErrInvalidVideoData = errors.New("invalid video data")

	NowFunc = time.Now // mockable
)

type (
	ServiceInterface interface {
		Analyze(ctx context.Context, userID int, nva NewVideoAnalysis) (VideoAnalysis, error)
		QueryAnalyses(ctx context.Context, userID int) ([]VideoAnalysis, error)
	}

	service struct {
		repo     Repository
		analyzer Analyzer
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, analyzer Analyzer) *service {
	return &service{
		repo:     repo,
		analyzer: analyzer,
	}
}

// Analyze decodes the recording, relays it to the analysis backend and
// persists the outcome for userID. A backend failure is not an error:
// the stored analysis carries zero scores and an explanatory feedback
// line instead.
func (svc *service) Analyze(ctx context.Context, userID int, nva NewVideoAnalysis) (VideoAnalysis, error) {
	data, err := base64.StdEncoding.DecodeString(nva.VideoData)
	if err != nil {
		return VideoAnalysis{}, ErrInvalidVideoData
	}

	res, err := svc.analyzer.Analyze(ctx, data, nva.Scenario, nva.Duration)
	if err != nil {
		res = AnalysisResult{
			Feedback: []string{FailedAnalysisFeedback},
		}
	}
	if res.Feedback == nil {
		res.Feedback = []string{}
	}

	va := VideoAnalysis{
		UserID:                userID,
		Scenario:              nva.Scenario,
		OverallScore:          res.OverallScore,
		EyeContactScore:       res.EyeContactScore,
		FacialExpressionScore: res.FacialExpressionScore,
		GestureScore:          res.GestureScore,
		PostureScore:          res.PostureScore,
		Feedback:              res.Feedback,
		CreatedAt:             NowFunc().UTC(),
	}
	va, err = svc.repo.CreateAnalysis(ctx, va)
	return va, errors.Wrap(err, "saving video analysis")
}

func (svc *service) QueryAnalyses(ctx context.Context, userID int) ([]VideoAnalysis, error) {
	analyses, err := svc.repo.QueryAnalysesByUser(ctx, userID)
	return analyses, errors.Wrap(err, "querying video analyses")
}
