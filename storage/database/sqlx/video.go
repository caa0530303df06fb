package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core/video"
)

type videoAnalysisRow struct {
	ID                    int       `db:"id"`
	UserID                int       `db:"user_id"`
	Scenario              string    `db:"scenario"`
	OverallScore          int       `db:"overall_score"`
	EyeContactScore       int       `db:"eye_contact_score"`
	FacialExpressionScore int       `db:"facial_expression_score"`
	GestureScore          int       `db:"gesture_score"`
	PostureScore          int       `db:"posture_score"`
	Feedback              []byte    `db:"feedback"` // JSONB
	CreatedAt             time.Time `db:"created_at"`
}

func (r videoAnalysisRow) analysis() (video.VideoAnalysis, error) {
	var feedback []string
	if err := json.Unmarshal(r.Feedback, &feedback); err != nil {
		return video.VideoAnalysis{}, errors.Wrap(err, "decoding analysis feedback")
	}
	return video.VideoAnalysis{
		ID:                    r.ID,
		UserID:                r.UserID,
		Scenario:              r.Scenario,
		OverallScore:          r.OverallScore,
		EyeContactScore:       r.EyeContactScore,
		FacialExpressionScore: r.FacialExpressionScore,
		GestureScore:          r.GestureScore,
		PostureScore:          r.PostureScore,
		Feedback:              feedback,
		CreatedAt:             r.CreatedAt,
	}, nil
}

type videoRepository struct {
	db *sqlx.DB
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *sqlx.DB) *videoRepository {
	return &videoRepository{db: db}
}

func (repo videoRepository) CreateAnalysis(ctx context.Context, va video.VideoAnalysis) (video.VideoAnalysis, error) {
	feedback, err := json.Marshal(va.Feedback)
	if err != nil {
		return video.VideoAnalysis{}, errors.Wrap(err, "encoding analysis feedback")
	}
	query := `
		INSERT INTO video_analyses
			(user_id, scenario, overall_score, eye_contact_score, facial_expression_score, gesture_score, posture_score, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		va.UserID, va.Scenario, va.OverallScore, va.EyeContactScore, va.FacialExpressionScore,
		va.GestureScore, va.PostureScore, feedback, va.CreatedAt.UTC(),
	).Scan(&va.ID)
	if err != nil {
		return video.VideoAnalysis{}, errors.Wrap(err, "inserting video analysis")
	}
	return va, nil
}

func (repo videoRepository) QueryAnalysesByUser(ctx context.Context, userID int) ([]video.VideoAnalysis, error) {
	var rows []videoAnalysisRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM video_analyses WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying video analyses")
	}
	analyses := make([]video.VideoAnalysis, 0, len(rows))
	for _, row := range rows {
		va, err := row.analysis()
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, va)
	}
	return analyses, nil
}
