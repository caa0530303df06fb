package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core/assessment"
)

type assessmentApi struct {
	svc      assessment.ServiceInterface
	validate *validator.Validate
}

func registerAssessmentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc assessment.ServiceInterface,
	validate *validator.Validate,
) {
	api := assessmentApi{
		svc:      svc,
		validate: validate,
	}

	// reads are public
	g.GET("/test-categories", api.queryCategories)
	g.GET("/test-questions", api.queryAllQuestions)
	g.GET("/test-questions/:categoryId", api.queryQuestionsByParam("categoryId"))
	g.GET("/test-categories/:id/questions", api.queryQuestionsByParam("id"))

	// category/question writes are admin-only
	admin := adminMiddleware()
	g.POST("/test-categories", api.createCategory, jwt, admin)
	g.PUT("/test-categories/:id", api.updateCategory, jwt, admin)
	g.DELETE("/test-categories/:id", api.destroyCategory, jwt, admin)
	g.POST("/test-questions", api.createQuestion, jwt, admin)
	g.PUT("/test-questions/:id", api.updateQuestion, jwt, admin)
	g.DELETE("/test-questions/:id", api.destroyQuestion, jwt, admin)

	// results belong to the session user
	g.POST("/test-results", api.submitResult, jwt)
	g.GET("/test-results", api.queryResults, jwt)
	g.DELETE("/test-results/:id", api.destroyResult, jwt)
}

// Handlers

func (api *assessmentApi) createCategory(ctx echo.Context) error {
	var data assessment.NewTestCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTestCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating test category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *assessmentApi) queryCategories(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying test categories")
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *assessmentApi) updateCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data assessment.UpdateTestCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTestCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == assessment.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test category not found")
		}
		return errors.Wrap(err, "updating test category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *assessmentApi) destroyCategory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteCategory(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == assessment.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test category not found")
		}
		return errors.Wrap(err, "deleting test category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) createQuestion(ctx echo.Context) error {
	var data assessment.NewTestQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTestQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.CreateQuestion(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == assessment.ErrCategoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test category not found")
		}
		return errors.Wrap(err, "creating test question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

// queryAllQuestions returns every question across categories as a flat
// list; the per-category routes wrap theirs in a {questions} envelope.
func (api *assessmentApi) queryAllQuestions(ctx echo.Context) error {
	questions, err := api.svc.QueryAllQuestions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying test questions")
	}
	return ctx.JSON(http.StatusOK, questions)
}

// queryQuestionsByParam serves the two historical routes exposing a
// category's questions; they differ only in the path param name.
func (api *assessmentApi) queryQuestionsByParam(param string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		categoryID, err := strconv.Atoi(ctx.Param(param))
		if err != nil || categoryID <= 0 {
			return errHttpNotFound
		}

		questions, err := api.svc.QueryQuestions(ctx.Request().Context(), categoryID)
		if err != nil {
			return errors.Wrap(err, "querying test questions")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"questions": questions})
	}
}

func (api *assessmentApi) updateQuestion(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data assessment.UpdateTestQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTestQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.UpdateQuestion(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == assessment.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test question not found")
		}
		return errors.Wrap(err, "updating test question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *assessmentApi) destroyQuestion(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteQuestion(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == assessment.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test question not found")
		}
		return errors.Wrap(err, "deleting test question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) submitResult(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data assessment.NewTestResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTestResult")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.SubmitResult(ctx.Request().Context(), userID, data)
	if err != nil {
		if errors.Cause(err) == assessment.ErrCategoryNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test category not found")
		}
		return errors.Wrap(err, "submitting test result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *assessmentApi) queryResults(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	results, err := api.svc.QueryResults(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying test results")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"results": results})
}

// destroyResult lets the owner (or an admin) delete a result.
func (api *assessmentApi) destroyResult(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	userID, _ := strconv.Atoi(claims.Subject)

	res, err := api.svc.GetResult(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == assessment.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Test result not found")
		}
		return errors.Wrap(err, "finding test result")
	}
	if res.UserID != userID && !claims.IsAdmin {
		return errHttpForbidden
	}

	if err := api.svc.DeleteResult(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting test result")
	}
	return ctx.NoContent(http.StatusNoContent)
}
