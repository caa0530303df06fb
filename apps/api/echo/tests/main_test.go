package tests

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/tawaslapp/tawasl/apps/api/echo"
	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/assessment"
	"github.com/tawaslapp/tawasl/core/content"
	"github.com/tawaslapp/tawasl/core/user"
	"github.com/tawaslapp/tawasl/core/video"
	emailsvc "github.com/tawaslapp/tawasl/services/email"
	inmemdb "github.com/tawaslapp/tawasl/storage/database/inmem"
)

var (
	conf *core.Config
	app  *Server

	usrRepo     user.Repository
	contentRepo content.Repository
	assessRepo  assessment.Repository
	videoRepo   video.Repository

	analyzer *analyzerStub

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// analyzerStub stands in for the analysis backend.
type analyzerStub struct {
	res video.AnalysisResult
	err error
}

var _ video.Analyzer = (*analyzerStub)(nil)

func (a *analyzerStub) Analyze(ctx context.Context, videoData []byte, scenario string, duration int) (video.AnalysisResult, error) {
	return a.res, a.err
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// setup rebuilds the server on a fresh in-memory DB.
func setup(t *testing.T) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	contentRepo = inmemdb.NewContentRepository(db)
	assessRepo = inmemdb.NewAssessmentRepository(db)
	videoRepo = inmemdb.NewVideoRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ClearSentMessages()
	analyzer = new(analyzerStub)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	app = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        nopLogger{},
		UserSvc:       user.NewService(usrRepo, mailSvc, conf),
		ContentSvc:    content.NewService(contentRepo),
		AssessmentSvc: assessment.NewService(assessRepo),
		VideoSvc:      video.NewService(videoRepo, analyzer),
		Validate:      validate,
		Translator:    translator,
	})
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
