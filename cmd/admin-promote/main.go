package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hack-portal.backend/internal/config"
	"hack-portal.backend/internal/domain/entities"
)

// Role changes happen only through this operator tool; the HTTP surface
// never exposes them.
var openPromoteDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{PrepareStmt: false})
}

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "profile email to change")
	demote := flag.Bool("demote", false, "set the role back to applicant")
	flag.Parse()

	if *email == "" {
		log.Fatal("❌ --email is required")
	}

	role := entities.RoleAdmin
	if *demote {
		role = entities.RoleApplicant
	}

	cfg := config.Load()
	db, err := openPromoteDB(cfg.Database.URL())
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := setRole(ctx, db, *email, role); err != nil {
		log.Fatalf("❌ %v", err)
	}
	fmt.Printf("✅ %s is now %s\n", *email, role)
}

func setRole(ctx context.Context, db *gorm.DB, email string, role entities.Role) error {
	res := db.WithContext(ctx).Table("profile").
		Where("email = ?", email).
		Update("role", string(role))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no profile found for %s", email)
	}
	return nil
}
