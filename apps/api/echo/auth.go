package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tawaslapp/tawasl/core"
	"github.com/tawaslapp/tawasl/core/user"
)

var (
	// appJWTConfig is the session auth middleware config; the signed JWT
	// travels in an HttpOnly cookie instead of an Authorization header.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"
)

// initJWTConfig finalizes appJWTConfig with runtime configuration.
func initJWTConfig(conf *core.Config) {
	appJWTConfig.SigningKey = conf.SecretKey
	appJWTConfig.TokenLookup = "cookie:" + conf.Server.SessionCookieName
}

// Claims represents the session claims transmitted via the JWT cookie.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	IsAdmin  bool   `json:"is_admin,omitempty"`
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(conf.Server.SessionExpiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.Username,
		Email:    usr.Email,
		IsAdmin:  usr.IsAdmin,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// setSessionCookie logs the user in by issuing the session JWT cookie.
func setSessionCookie(ctx echo.Context, usr user.User, conf *core.Config) error {
	token, err := GenerateToken(GetUserClaims(usr, conf))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(conf.Server.SessionExpiration),
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// clearSessionCookie logs the user out by expiring the session cookie.
func clearSessionCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Server.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUserID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errUnauthorized
	}
	return id, nil
}

func getContextUser(ctx echo.Context, svc user.ServiceInterface) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	id, err := getContextUserID(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
