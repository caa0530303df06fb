package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tawaslapp/tawasl/core/assessment"
)

type testCategoryRow struct {
	ID            int    `db:"id"`
	Name          string `db:"name"`
	Description   string `db:"description"`
	Duration      int    `db:"duration"`
	QuestionCount int    `db:"question_count"`
	Color         string `db:"color"`
	Icon          string `db:"icon"`
}

func (r testCategoryRow) category() assessment.TestCategory {
	return assessment.TestCategory(r)
}

type testQuestionRow struct {
	ID            int         `db:"id"`
	CategoryID    int         `db:"category_id"`
	Question      string      `db:"question"`
	Options       []byte      `db:"options"` // JSONB
	CorrectAnswer string      `db:"correct_answer"`
	Explanation   null.String `db:"explanation"`
}

func (r testQuestionRow) question() (assessment.TestQuestion, error) {
	var opts []string
	if err := json.Unmarshal(r.Options, &opts); err != nil {
		return assessment.TestQuestion{}, errors.Wrap(err, "decoding question options")
	}
	return assessment.TestQuestion{
		ID:            r.ID,
		CategoryID:    r.CategoryID,
		Question:      r.Question,
		Options:       opts,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   r.Explanation.String,
	}, nil
}

type testResultRow struct {
	ID             int         `db:"id"`
	UserID         int         `db:"user_id"`
	CategoryID     int         `db:"category_id"`
	Score          int         `db:"score"`
	TotalQuestions int         `db:"total_questions"`
	Answers        []byte      `db:"answers"` // JSONB
	Feedback       null.String `db:"feedback"`
	CompletedAt    time.Time   `db:"completed_at"`
}

func (r testResultRow) result() (assessment.TestResult, error) {
	answers := make(map[string]string)
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return assessment.TestResult{}, errors.Wrap(err, "decoding result answers")
	}
	return assessment.TestResult{
		ID:             r.ID,
		UserID:         r.UserID,
		CategoryID:     r.CategoryID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Answers:        answers,
		Feedback:       r.Feedback.String,
		CompletedAt:    r.CompletedAt,
	}, nil
}

type assessmentRepository struct {
	db *sqlx.DB
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *sqlx.DB) *assessmentRepository {
	return &assessmentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to assessment.ErrNotFound
func (repo assessmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return assessment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo assessmentRepository) CreateCategory(ctx context.Context, cat assessment.TestCategory) (assessment.TestCategory, error) {
	query := `
		INSERT INTO test_categories (name, description, duration, question_count, color, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		cat.Name, cat.Description, cat.Duration, cat.QuestionCount, cat.Color, cat.Icon,
	).Scan(&cat.ID)
	if err != nil {
		return assessment.TestCategory{}, errors.Wrap(err, "inserting test category")
	}
	return cat, nil
}

func (repo assessmentRepository) QueryAllCategories(ctx context.Context) ([]assessment.TestCategory, error) {
	var rows []testCategoryRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM test_categories ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying test categories")
	}
	cats := make([]assessment.TestCategory, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, row.category())
	}
	return cats, nil
}

func (repo assessmentRepository) GetCategoryByID(ctx context.Context, id int) (assessment.TestCategory, error) {
	var row testCategoryRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM test_categories WHERE id = $1", id); err != nil {
		return assessment.TestCategory{}, repo.trapNoRowsErr(err, "finding test category")
	}
	return row.category(), nil
}

func (repo assessmentRepository) UpdateCategory(ctx context.Context, cat assessment.TestCategory) (assessment.TestCategory, error) {
	query := `
		UPDATE test_categories
		SET name = $2, description = $3, duration = $4, question_count = $5, color = $6, icon = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		cat.ID, cat.Name, cat.Description, cat.Duration, cat.QuestionCount, cat.Color, cat.Icon,
	)
	if err != nil {
		return assessment.TestCategory{}, errors.Wrap(err, "updating test category")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.TestCategory{}, assessment.ErrNotFound
	}
	return cat, nil
}

// DeleteCategory relies on ON DELETE CASCADE to drop the category's
// questions and results atomically.
func (repo assessmentRepository) DeleteCategory(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM test_categories WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting test category")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrNotFound
	}
	return nil
}

func (repo assessmentRepository) CreateQuestion(ctx context.Context, q assessment.TestQuestion) (assessment.TestQuestion, error) {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return assessment.TestQuestion{}, errors.Wrap(err, "encoding question options")
	}
	query := `
		INSERT INTO test_questions (category_id, question, options, correct_answer, explanation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		q.CategoryID, q.Question, opts, q.CorrectAnswer, null.NewString(q.Explanation, q.Explanation != ""),
	).Scan(&q.ID)
	if err != nil {
		return assessment.TestQuestion{}, errors.Wrap(err, "inserting test question")
	}
	return q, nil
}

func (repo assessmentRepository) QueryAllQuestions(ctx context.Context) ([]assessment.TestQuestion, error) {
	var rows []testQuestionRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM test_questions ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying test questions")
	}
	questions := make([]assessment.TestQuestion, 0, len(rows))
	for _, row := range rows {
		q, err := row.question()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (repo assessmentRepository) QueryQuestionsByCategory(ctx context.Context, categoryID int) ([]assessment.TestQuestion, error) {
	var rows []testQuestionRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM test_questions WHERE category_id = $1 ORDER BY id", categoryID)
	if err != nil {
		return nil, errors.Wrap(err, "querying test questions")
	}
	questions := make([]assessment.TestQuestion, 0, len(rows))
	for _, row := range rows {
		q, err := row.question()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (repo assessmentRepository) GetQuestionByID(ctx context.Context, id int) (assessment.TestQuestion, error) {
	var row testQuestionRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM test_questions WHERE id = $1", id); err != nil {
		return assessment.TestQuestion{}, repo.trapNoRowsErr(err, "finding test question")
	}
	return row.question()
}

func (repo assessmentRepository) UpdateQuestion(ctx context.Context, q assessment.TestQuestion) (assessment.TestQuestion, error) {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return assessment.TestQuestion{}, errors.Wrap(err, "encoding question options")
	}
	query := `
		UPDATE test_questions
		SET question = $2, options = $3, correct_answer = $4, explanation = $5
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		q.ID, q.Question, opts, q.CorrectAnswer, null.NewString(q.Explanation, q.Explanation != ""),
	)
	if err != nil {
		return assessment.TestQuestion{}, errors.Wrap(err, "updating test question")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.TestQuestion{}, assessment.ErrNotFound
	}
	return q, nil
}

func (repo assessmentRepository) DeleteQuestion(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM test_questions WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting test question")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrNotFound
	}
	return nil
}

func (repo assessmentRepository) CreateResult(ctx context.Context, result assessment.TestResult) (assessment.TestResult, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return assessment.TestResult{}, errors.Wrap(err, "encoding result answers")
	}
	query := `
		INSERT INTO test_results (user_id, category_id, score, total_questions, answers, feedback, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		result.UserID, result.CategoryID, result.Score, result.TotalQuestions,
		answers, null.NewString(result.Feedback, result.Feedback != ""), result.CompletedAt.UTC(),
	).Scan(&result.ID)
	if err != nil {
		return assessment.TestResult{}, errors.Wrap(err, "inserting test result")
	}
	return result, nil
}

func (repo assessmentRepository) QueryResultsByUser(ctx context.Context, userID int) ([]assessment.TestResult, error) {
	var rows []testResultRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM test_results WHERE user_id = $1 ORDER BY completed_at DESC", userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying test results")
	}
	results := make([]assessment.TestResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.result()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (repo assessmentRepository) GetResultByID(ctx context.Context, id int) (assessment.TestResult, error) {
	var row testResultRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM test_results WHERE id = $1", id); err != nil {
		return assessment.TestResult{}, repo.trapNoRowsErr(err, "finding test result")
	}
	return row.result()
}

func (repo assessmentRepository) DeleteResult(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM test_results WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting test result")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assessment.ErrNotFound
	}
	return nil
}
