package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core/content"
)

type contentApi struct {
	svc      content.ServiceInterface
	validate *validator.Validate
}

func registerContentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc content.ServiceInterface,
	validate *validator.Validate,
) {
	api := contentApi{
		svc:      svc,
		validate: validate,
	}

	// reads are public
	g.GET("/articles", api.queryArticles)
	g.GET("/articles/:id", api.retrieveArticle)
	g.GET("/faqs", api.queryFAQs)

	// writes are admin-only
	admin := adminMiddleware()
	g.POST("/articles", api.createArticle, jwt, admin)
	g.PUT("/articles/:id", api.updateArticle, jwt, admin)
	g.DELETE("/articles/:id", api.destroyArticle, jwt, admin)
	g.POST("/faqs", api.createFAQ, jwt, admin)
	g.PUT("/faqs/:id", api.updateFAQ, jwt, admin)
	g.DELETE("/faqs/:id", api.destroyFAQ, jwt, admin)
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *contentApi) createArticle(ctx echo.Context) error {
	var data content.NewArticle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewArticle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	art, err := api.svc.CreateArticle(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating article")
	}
	return ctx.JSON(http.StatusCreated, art)
}

func (api *contentApi) queryArticles(ctx echo.Context) error {
	var filter content.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	arts, err := api.svc.QueryArticles(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying articles")
	}
	return ctx.JSON(http.StatusOK, arts)
}

func (api *contentApi) retrieveArticle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	art, err := api.svc.GetArticle(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return errors.Wrap(err, "finding article")
	}
	return ctx.JSON(http.StatusOK, art)
}

func (api *contentApi) updateArticle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data content.UpdateArticle
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateArticle")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	art, err := api.svc.UpdateArticle(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return errors.Wrap(err, "updating article")
	}
	return ctx.JSON(http.StatusOK, art)
}

func (api *contentApi) destroyArticle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteArticle(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return errors.Wrap(err, "deleting article")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *contentApi) createFAQ(ctx echo.Context) error {
	var data content.NewFAQ
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFAQ")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	faq, err := api.svc.CreateFAQ(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating faq")
	}
	return ctx.JSON(http.StatusCreated, faq)
}

func (api *contentApi) queryFAQs(ctx echo.Context) error {
	var filter content.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	faqs, err := api.svc.QueryFAQs(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying faqs")
	}
	return ctx.JSON(http.StatusOK, faqs)
}

func (api *contentApi) updateFAQ(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data content.UpdateFAQ
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFAQ")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	faq, err := api.svc.UpdateFAQ(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "FAQ not found")
		}
		return errors.Wrap(err, "updating faq")
	}
	return ctx.JSON(http.StatusOK, faq)
}

func (api *contentApi) destroyFAQ(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteFAQ(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "FAQ not found")
		}
		return errors.Wrap(err, "deleting faq")
	}
	return ctx.NoContent(http.StatusNoContent)
}
