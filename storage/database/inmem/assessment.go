package inmemdb

import (
	"context"
	"sort"

	"github.com/tawaslapp/tawasl/core/assessment"
)

type assessmentRepository struct {
	categories *categoryTable
	questions  *questionTable
	results    *resultTable
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *DB) *assessmentRepository {
	return &assessmentRepository{
		categories: db.category,
		questions:  db.question,
		results:    db.result,
	}
}

func (repo *assessmentRepository) CreateCategory(ctx context.Context, cat assessment.TestCategory) (assessment.TestCategory, error) {
	repo.categories.Lock()
	defer repo.categories.Unlock()

	repo.categories.pkCount++
	cat.ID = repo.categories.pkCount
	repo.categories.table[cat.ID] = &cat
	return cat, nil
}

func (repo *assessmentRepository) QueryAllCategories(ctx context.Context) ([]assessment.TestCategory, error) {
	repo.categories.RLock()
	defer repo.categories.RUnlock()

	cats := make([]assessment.TestCategory, 0, len(repo.categories.table))
	for _, cat := range repo.categories.table {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return cats, nil
}

func (repo *assessmentRepository) GetCategoryByID(ctx context.Context, id int) (assessment.TestCategory, error) {
	repo.categories.RLock()
	defer repo.categories.RUnlock()

	if cat, ok := repo.categories.table[id]; ok {
		return *cat, nil
	}
	return assessment.TestCategory{}, assessment.ErrNotFound
}

func (repo *assessmentRepository) UpdateCategory(ctx context.Context, cat assessment.TestCategory) (assessment.TestCategory, error) {
	repo.categories.Lock()
	defer repo.categories.Unlock()

	if _, ok := repo.categories.table[cat.ID]; !ok {
		return assessment.TestCategory{}, assessment.ErrNotFound
	}
	repo.categories.table[cat.ID] = &cat
	return cat, nil
}

func (repo *assessmentRepository) DeleteCategory(ctx context.Context, id int) error {
	repo.categories.Lock()
	defer repo.categories.Unlock()

	if _, ok := repo.categories.table[id]; !ok {
		return assessment.ErrNotFound
	}
	delete(repo.categories.table, id)

	// cascade, like the FK constraints do
	repo.questions.Lock()
	for qid, q := range repo.questions.table {
		if q.CategoryID == id {
			delete(repo.questions.table, qid)
		}
	}
	repo.questions.Unlock()

	repo.results.Lock()
	for rid, res := range repo.results.table {
		if res.CategoryID == id {
			delete(repo.results.table, rid)
		}
	}
	repo.results.Unlock()
	return nil
}

func (repo *assessmentRepository) CreateQuestion(ctx context.Context, q assessment.TestQuestion) (assessment.TestQuestion, error) {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	repo.questions.pkCount++
	q.ID = repo.questions.pkCount
	repo.questions.table[q.ID] = &q
	return q, nil
}

func (repo *assessmentRepository) QueryAllQuestions(ctx context.Context) ([]assessment.TestQuestion, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	questions := make([]assessment.TestQuestion, 0, len(repo.questions.table))
	for _, q := range repo.questions.table {
		questions = append(questions, *q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (repo *assessmentRepository) QueryQuestionsByCategory(ctx context.Context, categoryID int) ([]assessment.TestQuestion, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	questions := make([]assessment.TestQuestion, 0, len(repo.questions.table))
	for _, q := range repo.questions.table {
		if q.CategoryID == categoryID {
			questions = append(questions, *q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (repo *assessmentRepository) GetQuestionByID(ctx context.Context, id int) (assessment.TestQuestion, error) {
	repo.questions.RLock()
	defer repo.questions.RUnlock()

	if q, ok := repo.questions.table[id]; ok {
		return *q, nil
	}
	return assessment.TestQuestion{}, assessment.ErrNotFound
}

func (repo *assessmentRepository) UpdateQuestion(ctx context.Context, q assessment.TestQuestion) (assessment.TestQuestion, error) {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	if _, ok := repo.questions.table[q.ID]; !ok {
		return assessment.TestQuestion{}, assessment.ErrNotFound
	}
	repo.questions.table[q.ID] = &q
	return q, nil
}

func (repo *assessmentRepository) DeleteQuestion(ctx context.Context, id int) error {
	repo.questions.Lock()
	defer repo.questions.Unlock()

	if _, ok := repo.questions.table[id]; !ok {
		return assessment.ErrNotFound
	}
	delete(repo.questions.table, id)
	return nil
}

func (repo *assessmentRepository) CreateResult(ctx context.Context, res assessment.TestResult) (assessment.TestResult, error) {
	repo.results.Lock()
	defer repo.results.Unlock()

	repo.results.pkCount++
	res.ID = repo.results.pkCount
	repo.results.table[res.ID] = &res
	return res, nil
}

func (repo *assessmentRepository) QueryResultsByUser(ctx context.Context, userID int) ([]assessment.TestResult, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	results := make([]assessment.TestResult, 0, len(repo.results.table))
	for _, res := range repo.results.table {
		if res.UserID == userID {
			results = append(results, *res)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CompletedAt.After(results[j].CompletedAt) })
	return results, nil
}

func (repo *assessmentRepository) GetResultByID(ctx context.Context, id int) (assessment.TestResult, error) {
	repo.results.RLock()
	defer repo.results.RUnlock()

	if res, ok := repo.results.table[id]; ok {
		return *res, nil
	}
	return assessment.TestResult{}, assessment.ErrNotFound
}

func (repo *assessmentRepository) DeleteResult(ctx context.Context, id int) error {
	repo.results.Lock()
	defer repo.results.Unlock()

	if _, ok := repo.results.table[id]; !ok {
		return assessment.ErrNotFound
	}
	delete(repo.results.table, id)
	return nil
}
