package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"buildtrack/config"
	"buildtrack/internal/domain/user"
	"buildtrack/internal/repository"
	"buildtrack/internal/services"
	"buildtrack/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const usage = `
buildtrack - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up      Create extensions, enums and tables
  seed    Create the initial workspace owner account

Flags:
  -owner-email string  Owner email for seeding (default "owner@buildtrack.local")
  -owner-pass string   Owner password for seeding (default "Owner@123!")
`

func main() {
	ownerEmail := flag.String("owner-email", "owner@buildtrack.local", "Owner email for seeding")
	ownerPass := flag.String("owner-pass", "Owner@123!", "Owner password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch flag.Arg(0) {
	case "up":
		if err := repository.InitSchema(ctx, db); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Println("migrations completed")
	case "seed":
		hash, err := services.HashPassword(*ownerPass)
		if err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		owner := user.User{
			ID:           uuid.New(),
			WorkspaceID:  uuid.New(),
			Email:        *ownerEmail,
			FullName:     "Workspace Owner",
			PasswordHash: hash,
			Role:         user.RoleOwner,
			IsActive:     true,
			CreatedAt:    time.Now(),
		}
		if err := repository.NewUserRepository(db).Create(ctx, nil, &owner); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Printf("owner created: %s (workspace %s)", owner.Email, owner.WorkspaceID)
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
