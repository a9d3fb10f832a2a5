package router

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"postboard/docs"
	"postboard/internal/auth"
	"postboard/internal/config"
	apperrors "postboard/internal/errors"
	"postboard/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.HTTPErrorHandler = httpErrorHandler

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, apperrors.Response{Success: true, Message: "Response from the server"})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := bearerAuth(jwtService, tokenStore)

	api := e.Group("/api")

	// Auth routes. The code flows stay public: their proof is the emailed
	// code, not a session token.
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout, authenticated)
	authGroup.PATCH("/send-verification-code", authHandler.SendVerificationCode)
	authGroup.PATCH("/verify-verification-code", authHandler.VerifyVerificationCode)
	authGroup.PATCH("/change-password", authHandler.ChangePassword, authenticated)
	authGroup.PATCH("/send-forgot-password-code", authHandler.SendForgotPasswordCode)
	authGroup.PATCH("/verify-forgot-password-code", authHandler.VerifyForgotPasswordCode)

	// Post routes. Reads are open; mutations require a valid bearer token.
	posts := api.Group("/posts")
	posts.GET("", postHandler.List)
	posts.GET("/:id", postHandler.Get)
	posts.POST("", postHandler.Create, authenticated)
	posts.PUT("/:id", postHandler.Update, authenticated)
	posts.DELETE("/:id", postHandler.Delete, authenticated)
}

// bearerAuth builds the JWT middleware: token from the Authorization header
// (Bearer scheme) or the Authorization cookie, verified claims attached under
// "user", denylisted tokens rejected.
func bearerAuth(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:Authorization:Bearer ,cookie:" + handler.AuthCookieName,
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			claims, err := jwtService.VerifyToken(tokenString)
			if err != nil {
				return nil, err
			}
			denied, _ := tokenStore.IsTokenDenylisted(c.Request().Context(), claims.ID)
			if denied {
				return nil, auth.ErrTokenInvalid
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// parse failures surface our own sentinels; anything else means
			// no token could be extracted from the request
			var msg string
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				msg = "Token is expired"
			case errors.Is(err, auth.ErrSecretMissing):
				msg = "Token secret is unavailable"
			case errors.Is(err, auth.ErrTokenInvalid):
				msg = "Invalid token"
			default:
				msg = "No token provided"
			}
			return echo.NewHTTPError(http.StatusUnauthorized, msg)
		},
	})
}

// httpErrorHandler renders every error echo surfaces (including middleware
// rejections and unknown routes) in the uniform response envelope.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}
	_ = c.JSON(code, apperrors.Response{Success: false, Message: message})
}
