package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/user"
)

const (
	oauthStateCookieName = "oauthstate"
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type userApi struct {
	svc      user.ServiceInterface
	conf     *core.Config
	validate *validator.Validate
	oauth    *oauth2.Config
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc user.ServiceInterface,
	conf *core.Config,
	validate *validator.Validate,
) {
	api := userApi{
		svc:      svc,
		conf:     conf,
		validate: validate,
		oauth: &oauth2.Config{
			ClientID:     conf.Google.ClientID,
			ClientSecret: conf.Google.ClientSecret,
			RedirectURL:  conf.Google.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/verify-email", api.verifyEmail)
	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
	g.GET("/auth/google", api.googleLogin)
	g.GET("/auth/google/callback", api.googleCallback)

	// authed endpoints
	g.GET("/me", api.me, jwt)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		switch errors.Cause(err) {
		case user.ErrEmailExists:
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		case user.ErrUsernameExists:
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		return errors.Wrap(err, "registering user")
	}

	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Verification code sent to email."})
}

func (api *userApi) verifyEmail(ctx echo.Context) error {
	var data user.VerifyEmail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyEmail")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.VerifyEmail(ctx.Request().Context(), data.Email, data.Code); err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		case user.ErrAlreadyVerified:
			return echo.NewHTTPError(http.StatusBadRequest, "Already verified")
		case user.ErrInvalidCode:
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid code")
		case user.ErrCodeExpired:
			return echo.NewHTTPError(http.StatusBadRequest, "Verification code expired")
		}
		return errors.Wrap(err, "verifying email")
	}

	return ctx.JSON(http.StatusOK, echo.Map{"message": "Email verified"})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrInvalidCredentials:
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid credentials")
		case user.ErrNotVerified:
			return echo.NewHTTPError(http.StatusForbidden, "Please verify your email before logging in.")
		}
		return errors.Wrap(err, "authenticating")
	}

	if err := setSessionCookie(ctx, usr, api.conf); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) logout(ctx echo.Context) error {
	clearSessionCookie(ctx, api.conf)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errUnauthorized
		}
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// googleLogin redirects to Google's consent page with a state nonce
// pinned in a short-lived cookie.
func (api *userApi) googleLogin(ctx echo.Context) error {
	state := uuid.New().String()
	ctx.SetCookie(&http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   !api.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.Redirect(http.StatusTemporaryRedirect, api.oauth.AuthCodeURL(state))
}

func (api *userApi) googleCallback(ctx echo.Context) error {
	stateCookie, err := ctx.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != ctx.QueryParam("state") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid oauth state")
	}

	reqCtx := ctx.Request().Context()
	token, err := api.oauth.Exchange(reqCtx, ctx.QueryParam("code"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "oauth code exchange failed")
	}

	res, err := api.oauth.Client(reqCtx, token).Get(googleUserInfoURL)
	if err != nil {
		return errors.Wrap(err, "fetching google profile")
	}
	defer func() { _ = res.Body.Close() }()

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		return errors.Wrap(err, "decoding google profile")
	}
	if profile.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No email from Google.")
	}

	usr, err := api.svc.AuthenticateOAuth(reqCtx, user.OAuthProfile{Email: profile.Email, Name: profile.Name})
	if err != nil {
		return errors.Wrap(err, "authenticating google user")
	}

	if err := setSessionCookie(ctx, usr, api.conf); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, api.conf.FrontendBaseURL)
}
