package inmemdb

import (
	"sync"

	"github.com/tawaslapp/tawasl/core/assessment"
	"github.com/tawaslapp/tawasl/core/content"
	"github.com/tawaslapp/tawasl/core/user"
	"github.com/tawaslapp/tawasl/core/video"
)

type (
	DB struct {
		user     *userTable
		article  *articleTable
		faq      *faqTable
		category *categoryTable
		question *questionTable
		result   *resultTable
		analysis *analysisTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}
	articleTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*content.Article
	}
	faqTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*content.FAQ
	}
	categoryTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*assessment.TestCategory
	}
	questionTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*assessment.TestQuestion
	}
	resultTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*assessment.TestResult
	}
	analysisTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*video.VideoAnalysis
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[int]*user.User)},
		article:  &articleTable{table: make(map[int]*content.Article)},
		faq:      &faqTable{table: make(map[int]*content.FAQ)},
		category: &categoryTable{table: make(map[int]*assessment.TestCategory)},
		question: &questionTable{table: make(map[int]*assessment.TestQuestion)},
		result:   &resultTable{table: make(map[int]*assessment.TestResult)},
		analysis: &analysisTable{table: make(map[int]*video.VideoAnalysis)},
	}
	return db, nil
}
