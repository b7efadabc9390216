package main

import (
	"log"
	"os"

	"brokerage/src/config"
	aws_handler "brokerage/src/utils/aws"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Fatalf("Error loading config for environment: %v", err)
	}
	if cfg.Databases.SQL.PasswordSecretID != "" {
		awsHandler, err := aws_handler.NewAWSHandler(cfg.AWS.Region)
		if err != nil {
			log.Fatalf("Failed to create AWS session: %v", err)
		}
		if err := config.ResolveSecrets(cfg, awsHandler.SecretManager); err != nil {
			log.Fatalf("Failed to resolve secrets: %v", err)
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.Databases.SQL.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB from GORM DB: %v", err)
	}
	defer sqlDB.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := goose.Run(command, sqlDB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations (%s): %v", command, err)
	}

	log.Println("Database migration completed successfully")
}
