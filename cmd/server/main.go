package main

import (
	"log"
	"net/http"

	_ "postboard/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"postboard/internal/auth"
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/handler"
	"postboard/internal/mail"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/router"
	"postboard/internal/service"
)

// @title Postboard API
// @version 1.0
// @description Account authentication and ownership-scoped post CRUD.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	// An empty TOKEN_SECRET is not fatal: authenticated routes reject, the
	// rest of the API stays available.
	if cfg.TokenSecret == "" {
		log.Println("warning: TOKEN_SECRET is not set, authenticated requests will fail")
	}
	if cfg.HMACSecret == "" {
		log.Println("warning: HMAC_SECRET is not set")
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.TokenSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewPasswordHasher()
	signer := auth.NewCodeSigner(cfg.HMACSecret)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)

	authService := service.NewAuthService(userRepo, hasher, signer, jwtService, tokenStore, mailer, cfg.MailFrom)
	postService := service.NewPostService(postRepo)

	authHandler := handler.NewAuthHandler(authService, cfg.IsProduction())
	postHandler := handler.NewPostHandler(postService)

	router.Register(e, cfg, jwtService, tokenStore, authHandler, postHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
