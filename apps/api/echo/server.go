package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/assessment"
	"github.com/tawaslapp/tawasl/core/content"
	"github.com/tawaslapp/tawasl/core/user"
	"github.com/tawaslapp/tawasl/core/video"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       user.ServiceInterface
		ContentSvc    content.ServiceInterface
		AssessmentSvc assessment.ServiceInterface
		VideoSvc      video.ServiceInterface
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	initJWTConfig(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	// the session cookie requires credentialed CORS
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.AllowedOrigins,
		AllowCredentials: true,
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	api.GET("/health", s.health)

	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(api, jwt, s.deps.UserSvc, conf, s.deps.Validate)
	registerContentAPI(api, jwt, s.deps.ContentSvc, s.deps.Validate)
	registerAssessmentAPI(api, jwt, s.deps.AssessmentSvc, s.deps.Validate)
	registerVideoAPI(api, jwt, s.deps.VideoSvc, s.deps.Validate)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

// Errors reports a fatal server error; the caller is expected to exit.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// ShutdownSignal relays SIGINT/SIGTERM; it is also triggered internally
// on unrecoverable request errors via SignalShutdown.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown requests a graceful shutdown without an OS signal.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Tawasl API!")
}

func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":      "ok",
		"message":     "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.deps.Conf.Env,
	})
}
