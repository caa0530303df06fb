package assessment

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound         = errors.New("not found")
	ErrCategoryNotFound = errors.New("test category not found")

	NowFunc = time.Now // mockable
)

type (
	ServiceInterface interface {
		CreateCategory(ctx context.Context, nc NewTestCategory) (TestCategory, error)
		QueryCategories(ctx context.Context) ([]TestCategory, error)
		GetCategory(ctx context.Context, id int) (TestCategory, error)
		UpdateCategory(ctx context.Context, id int, uc UpdateTestCategory) (TestCategory, error)
		DeleteCategory(ctx context.Context, id int) error

		CreateQuestion(ctx context.Context, nq NewTestQuestion) (TestQuestion, error)
		QueryAllQuestions(ctx context.Context) ([]TestQuestion, error)
		QueryQuestions(ctx context.Context, categoryID int) ([]TestQuestion, error)
		UpdateQuestion(ctx context.Context, id int, uq UpdateTestQuestion) (TestQuestion, error)
		DeleteQuestion(ctx context.Context, id int) error

		SubmitResult(ctx context.Context, userID int, nr NewTestResult) (TestResult, error)
		QueryResults(ctx context.Context, userID int) ([]TestResult, error)
		GetResult(ctx context.Context, id int) (TestResult, error)
		DeleteResult(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) CreateCategory(ctx context.Context, nc NewTestCategory) (TestCategory, error) {
	cat := TestCategory{
		Name:          nc.Name,
		Description:   nc.Description,
		Duration:      nc.Duration,
		QuestionCount: nc.QuestionCount,
		Color:         nc.Color,
		Icon:          nc.Icon,
	}
	cat, err := svc.repo.CreateCategory(ctx, cat)
	return cat, errors.Wrap(err, "creating test category")
}

func (svc *service) QueryCategories(ctx context.Context) ([]TestCategory, error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	return cats, errors.Wrap(err, "querying test categories")
}

func (svc *service) GetCategory(ctx context.Context, id int) (TestCategory, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

// UpdateCategory merges the provided fields into the stored category.
func (svc *service) UpdateCategory(ctx context.Context, id int, uc UpdateTestCategory) (TestCategory, error) {
	cat, err := svc.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return TestCategory{}, err
	}
	if uc.Name != "" {
		cat.Name = uc.Name
	}
	if uc.Description != "" {
		cat.Description = uc.Description
	}
	if uc.Duration != 0 {
		cat.Duration = uc.Duration
	}
	if uc.QuestionCount != 0 {
		cat.QuestionCount = uc.QuestionCount
	}
	if uc.Color != "" {
		cat.Color = uc.Color
	}
	if uc.Icon != "" {
		cat.Icon = uc.Icon
	}
	cat, err = svc.repo.UpdateCategory(ctx, cat)
	return cat, errors.Wrap(err, "updating test category")
}

// DeleteCategory removes the category and everything hanging off it
// (questions, results).
func (svc *service) DeleteCategory(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCategoryByID(ctx, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteCategory(ctx, id), "deleting test category")
}

func (svc *service) CreateQuestion(ctx context.Context, nq NewTestQuestion) (TestQuestion, error) {
	if _, err := svc.repo.GetCategoryByID(ctx, nq.CategoryID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return TestQuestion{}, ErrCategoryNotFound
		}
		return TestQuestion{}, err
	}
	q := TestQuestion{
		CategoryID:    nq.CategoryID,
		Question:      nq.Question,
		Options:       nq.Options,
		CorrectAnswer: nq.CorrectAnswer,
		Explanation:   nq.Explanation,
	}
	q, err := svc.repo.CreateQuestion(ctx, q)
	return q, errors.Wrap(err, "creating test question")
}

func (svc *service) QueryAllQuestions(ctx context.Context) ([]TestQuestion, error) {
	qs, err := svc.repo.QueryAllQuestions(ctx)
	return qs, errors.Wrap(err, "querying test questions")
}

func (svc *service) QueryQuestions(ctx context.Context, categoryID int) ([]TestQuestion, error) {
	qs, err := svc.repo.QueryQuestionsByCategory(ctx, categoryID)
	return qs, errors.Wrap(err, "querying test questions")
}

// UpdateQuestion merges the provided fields into the stored question and
// re-checks that the correct answer is still one of the options.
func (svc *service) UpdateQuestion(ctx context.Context, id int, uq UpdateTestQuestion) (TestQuestion, error) {
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return TestQuestion{}, err
	}
	if uq.Question != "" {
		q.Question = uq.Question
	}
	if len(uq.Options) > 0 {
		q.Options = uq.Options
	}
	if uq.CorrectAnswer != "" {
		q.CorrectAnswer = uq.CorrectAnswer
	}
	if uq.Explanation != "" {
		q.Explanation = uq.Explanation
	}
	if err := validateOptions(q.Options, q.CorrectAnswer); err != nil {
		return TestQuestion{}, err
	}
	q, err = svc.repo.UpdateQuestion(ctx, q)
	return q, errors.Wrap(err, "updating test question")
}

func (svc *service) DeleteQuestion(ctx context.Context, id int) error {
	if _, err := svc.repo.GetQuestionByID(ctx, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteQuestion(ctx, id), "deleting test question")
}

// SubmitResult stores a test attempt for userID. The score is computed
// server-side: answers are keyed by question index ("0", "1", ...) and
// checked against the stored questions in their stable order, so a
// tampered client-side score never survives.
func (svc *service) SubmitResult(ctx context.Context, userID int, nr NewTestResult) (TestResult, error) {
	if _, err := svc.repo.GetCategoryByID(ctx, nr.CategoryID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return TestResult{}, ErrCategoryNotFound
		}
		return TestResult{}, err
	}
	questions, err := svc.repo.QueryQuestionsByCategory(ctx, nr.CategoryID)
	if err != nil {
		return TestResult{}, errors.Wrap(err, "querying test questions")
	}

	score := 0
	for i := 0; i < nr.TotalQuestions && i < len(questions); i++ {
		if nr.Answers[strconv.Itoa(i)] == questions[i].CorrectAnswer {
			score++
		}
	}

	res := TestResult{
		UserID:         userID,
		CategoryID:     nr.CategoryID,
		Score:          score,
		TotalQuestions: nr.TotalQuestions,
		Answers:        nr.Answers,
		Feedback:       scoreFeedback(score, nr.TotalQuestions),
		CompletedAt:    NowFunc().UTC(),
	}
	res, err = svc.repo.CreateResult(ctx, res)
	return res, errors.Wrap(err, "saving test result")
}

func (svc *service) QueryResults(ctx context.Context, userID int) ([]TestResult, error) {
	results, err := svc.repo.QueryResultsByUser(ctx, userID)
	return results, errors.Wrap(err, "querying test results")
}

func (svc *service) GetResult(ctx context.Context, id int) (TestResult, error) {
	return svc.repo.GetResultByID(ctx, id)
}

func (svc *service) DeleteResult(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteResult(ctx, id), "deleting test result")
}

// scoreFeedback maps the percentage to a canned coaching message.
func scoreFeedback(score, total int) string {
	pct := float64(score) / float64(total) * 100
	switch {
	case pct >= 90:
		return "Excellent work! You have a strong understanding of communication skills. Keep practicing to maintain this level."
	case pct >= 80:
		return "Good job! You have a solid foundation in communication skills. Focus on the areas where you missed questions."
	case pct >= 70:
		return "Fair performance. You understand the basics but should review key concepts and practice more."
	default:
		return "You may benefit from additional study and practice. Consider reviewing the related articles and taking the test again."
	}
}
