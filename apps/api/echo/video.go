package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core/video"
)

type videoApi struct {
	svc      video.ServiceInterface
	validate *validator.Validate
}

func registerVideoAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc video.ServiceInterface,
	validate *validator.Validate,
) {
	api := videoApi{
		svc:      svc,
		validate: validate,
	}

	g.POST("/video-analyses", api.analyze, jwt)
	g.GET("/video-analyses", api.queryAnalyses, jwt)
}

// Handlers

func (api *videoApi) analyze(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data video.NewVideoAnalysis
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVideoAnalysis")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	analysis, err := api.svc.Analyze(ctx.Request().Context(), userID, data)
	if err != nil {
		if errors.Cause(err) == video.ErrInvalidVideoData {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid video data")
		}
		return errors.Wrap(err, "analyzing video")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"analysis": analysis})
}

func (api *videoApi) queryAnalyses(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	analyses, err := api.svc.QueryAnalyses(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying video analyses")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"analyses": analyses})
}
