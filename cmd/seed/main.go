// Seeds the database with demo users and posts for local development.
package main

import (
	"context"
	"fmt"
	"log"

	"postboard/internal/auth"
	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/model"
	"postboard/internal/repository"
)

func main() {
	cfg := config.Load()

	gormDB, err := db.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	posts := repository.NewPostRepository(gormDB)
	hasher := auth.NewPasswordHasher()

	for i := 1; i <= 3; i++ {
		email := fmt.Sprintf("demo%d@example.com", i)
		if _, err := users.FindByEmail(ctx, email); err == nil {
			log.Printf("user %s already seeded, skipping", email)
			continue
		}

		hashed, err := hasher.Hash(fmt.Sprintf("Demo%dpassword", i))
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		user := &model.User{Email: email, Password: hashed, Verified: true}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("create user %s: %v", email, err)
		}

		for j := 1; j <= 2; j++ {
			post := &model.Post{
				Title:       fmt.Sprintf("Demo post %d by %s", j, email),
				Description: "Seeded content for local development.",
				Category:    "demo",
				UserID:      user.ID,
			}
			if err := posts.Create(ctx, post); err != nil {
				log.Fatalf("create post: %v", err)
			}
		}
		log.Printf("seeded %s with 2 posts", email)
	}
}
