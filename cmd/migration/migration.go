package main

import (
	"flag"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/drivers/database"
	"telemed-service/internal/app/drivers/logger"
	"telemed-service/internal/migration"

	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "maximum number of migrations to apply, 0 applies all")
	flag.Parse()

	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()
	log := logger.NewLogrusLogger(internalConfig)

	var migrationDirection migrate.MigrationDirection
	switch *direction {
	case "up":
		migrationDirection = migrate.Up
	case "down":
		migrationDirection = migrate.Down
	default:
		log.Fatalf("Unknown migration direction %q, expected up or down", *direction)
	}

	db := database.NewPostgresDB(driverConfig)
	defer db.Close()

	n, err := migrate.ExecMax(db.DB, migration.Dialect, migration.Source(), migrationDirection, *steps)
	if err != nil {
		log.Fatalf("Error executing migration: %v", err)
	}

	log.WithField("direction", *direction).Infof("Applied %d migrations!", n)
}
