package main

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasklist/internal/config"
	"tasklist/internal/db"
	"tasklist/internal/model"
	"tasklist/internal/repository"
)

const (
	demoEmail    = "demo@tasklist.local"
	demoName     = "Demo User"
	demoPassword = "demo-password"
)

var demoTasks = []string{
	"Buy groceries",
	"Write the weekly report",
	"Book dentist appointment",
}

func main() {
	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Todo{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	todoRepo := repository.NewTodoRepository(gormDB)
	ctx := context.Background()

	user, created, err := seedUser(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}
	if created {
		log.Printf("Created demo user %s (password: %s)", demoEmail, demoPassword)
	} else {
		log.Printf("Demo user %s already exists, skipping", demoEmail)
	}

	seeded, err := seedTodos(ctx, todoRepo, user)
	if err != nil {
		log.Fatalf("Failed to seed todos: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New todos created: %d", seeded)
}

// seedUser creates the demo user unless it already exists.
func seedUser(ctx context.Context, repo repository.UserRepository) (*model.User, bool, error) {
	existing, err := repo.FindByEmail(ctx, demoEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
	if err != nil {
		return nil, false, err
	}

	user := &model.User{
		Name:          demoName,
		Email:         demoEmail,
		PasswordHash:  string(hash),
		TermsAccepted: true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// seedTodos fills in the sample tasks the demo user does not have yet.
func seedTodos(ctx context.Context, repo repository.TodoRepository, user *model.User) (int, error) {
	existing, err := repo.ListByOwner(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[t.Task] = true
	}

	seeded := 0
	for _, task := range demoTasks {
		if have[task] {
			continue
		}
		todo := &model.Todo{Task: task, UserID: user.ID}
		todo.SetCompleted(false)
		if err := repo.Create(ctx, todo); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
