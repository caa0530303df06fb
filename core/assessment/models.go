package assessment

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tawaslapp/tawasl/core"
)

type TestCategory struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Duration      int    `json:"duration"` // minutes
	QuestionCount int    `json:"questionCount"`
	Color         string `json:"color"`
	Icon          string `json:"icon"`
}

type TestQuestion struct {
	ID            int      `json:"id"`
	CategoryID    int      `json:"categoryId"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

type TestResult struct {
	ID             int               `json:"id"`
	UserID         int               `json:"userId"`
	CategoryID     int               `json:"categoryId"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
	Answers        map[string]string `json:"answers"` // question index -> chosen option
	Feedback       string            `json:"feedback"`
	CompletedAt    time.Time         `json:"completedAt"` // UTC
}

// NewTestCategory contains information needed to create a TestCategory.
type NewTestCategory struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description" validate:"required"`
	Duration      int    `json:"duration" validate:"required,min=1"`
	QuestionCount int    `json:"questionCount" validate:"required,min=1"`
	Color         string `json:"color" validate:"required"`
	Icon          string `json:"icon" validate:"required"`
}

func (nc *NewTestCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Color = core.CleanString(nc.Color)
	nc.Icon = core.CleanString(nc.Icon)
	return validate.Struct(nc)
}

// UpdateTestCategory defines what may be changed on an existing
// TestCategory; zero-valued fields are left untouched.
type UpdateTestCategory struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Duration      int    `json:"duration" validate:"omitempty,min=1"`
	QuestionCount int    `json:"questionCount" validate:"omitempty,min=1"`
	Color         string `json:"color"`
	Icon          string `json:"icon"`
}

func (uc *UpdateTestCategory) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	uc.Color = core.CleanString(uc.Color)
	uc.Icon = core.CleanString(uc.Icon)
	return validate.Struct(uc)
}

// NewTestQuestion contains information needed to create a TestQuestion.
// Options are stored trimmed; the correct answer must be one of them.
type NewTestQuestion struct {
	CategoryID    int      `json:"categoryId" validate:"required"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

func (nq *NewTestQuestion) Validate(validate *validator.Validate) error {
	nq.Question = core.CleanString(nq.Question)
	nq.CorrectAnswer = core.CleanString(nq.CorrectAnswer)
	nq.Explanation = core.CleanString(nq.Explanation)
	nq.Options = cleanOptions(nq.Options)
	if err := validate.Struct(nq); err != nil {
		return err
	}
	return validateOptions(nq.Options, nq.CorrectAnswer)
}

// UpdateTestQuestion defines what may be changed on an existing
// TestQuestion; zero-valued fields are left untouched. When options or
// the correct answer change, both are re-checked against each other.
type UpdateTestQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

func (uq *UpdateTestQuestion) Validate(validate *validator.Validate) error {
	uq.Question = core.CleanString(uq.Question)
	uq.CorrectAnswer = core.CleanString(uq.CorrectAnswer)
	uq.Explanation = core.CleanString(uq.Explanation)
	uq.Options = cleanOptions(uq.Options)
	return validate.Struct(uq)
}

// NewTestResult is a submitted test attempt. The reported score is
// ignored; it is recomputed against the stored questions.
type NewTestResult struct {
	CategoryID     int               `json:"categoryId" validate:"required"`
	TotalQuestions int               `json:"totalQuestions" validate:"required,min=1"`
	Answers        map[string]string `json:"answers" validate:"required"`
}

func (nr *NewTestResult) Validate(validate *validator.Validate) error {
	return validate.Struct(nr)
}

// cleanOptions trims options and drops empties, preserving order.
func cleanOptions(opts []string) []string {
	cleaned := make([]string, 0, len(opts))
	for _, opt := range opts {
		if opt = strings.TrimSpace(opt); opt != "" {
			cleaned = append(cleaned, opt)
		}
	}
	return cleaned
}

func validateOptions(opts []string, correct string) error {
	if len(opts) < 2 {
		return core.NewValidationError(nil, core.FieldError{
			Field: "options", Error: "at least 2 non-empty options are required",
		})
	}
	for _, opt := range opts {
		if opt == correct {
			return nil
		}
	}
	return core.NewValidationError(nil, core.FieldError{
		Field: "correctAnswer", Error: "must be one of the options",
	})
}

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat TestCategory) (TestCategory, error)
		QueryAllCategories(ctx context.Context) ([]TestCategory, error)
		GetCategoryByID(ctx context.Context, id int) (TestCategory, error)
		UpdateCategory(ctx context.Context, cat TestCategory) (TestCategory, error)
		// DeleteCategory removes the category along with its questions
		// and results.
		DeleteCategory(ctx context.Context, id int) error

		CreateQuestion(ctx context.Context, q TestQuestion) (TestQuestion, error)
		QueryAllQuestions(ctx context.Context) ([]TestQuestion, error)
		// QueryQuestionsByCategory returns questions in insertion order;
		// the position in this slice is the question index used when scoring.
		QueryQuestionsByCategory(ctx context.Context, categoryID int) ([]TestQuestion, error)
		GetQuestionByID(ctx context.Context, id int) (TestQuestion, error)
		UpdateQuestion(ctx context.Context, q TestQuestion) (TestQuestion, error)
		DeleteQuestion(ctx context.Context, id int) error

		CreateResult(ctx context.Context, res TestResult) (TestResult, error)
		QueryResultsByUser(ctx context.Context, userID int) ([]TestResult, error)
		GetResultByID(ctx context.Context, id int) (TestResult, error)
		DeleteResult(ctx context.Context, id int) error
	}
)
