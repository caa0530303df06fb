package inmemdb

import (
	"context"
	"sort"

	"github.com/tawaslapp/tawasl/core/video"
)

type videoRepository struct {
	db *analysisTable
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *DB) *videoRepository {
	return &videoRepository{db: db.analysis}
}

func (repo *videoRepository) CreateAnalysis(ctx context.Context, va video.VideoAnalysis) (video.VideoAnalysis, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	va.ID = repo.db.pkCount
	repo.db.table[va.ID] = &va
	return va, nil
}

func (repo *videoRepository) QueryAnalysesByUser(ctx context.Context, userID int) ([]video.VideoAnalysis, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	analyses := make([]video.VideoAnalysis, 0, len(repo.db.table))
	for _, va := range repo.db.table {
		if va.UserID == userID {
			analyses = append(analyses, *va)
		}
	}
	sort.Slice(analyses, func(i, j int) bool { return analyses[i].CreatedAt.After(analyses[j].CreatedAt) })
	return analyses, nil
}
