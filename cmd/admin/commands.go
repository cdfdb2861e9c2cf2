package main

import (
	"fmt"

	"github.com/safehaven/backend/internal/config"
	"github.com/safehaven/backend/internal/database"
	"github.com/safehaven/backend/internal/logger"
	"github.com/safehaven/backend/internal/seed"
	"gorm.io/gorm"
)

// openDatabase wires up config, logging and the store for a CLI run.
func openDatabase() (*gorm.DB, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cleanup := func() {
		database.Close(db)
		logger.Close()
	}
	return db, cleanup, nil
}

func runMigrate() error {
	db, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.Migrate(db); err != nil {
		return err
	}

	fmt.Println("Migrations completed")
	return nil
}

func runSeed() error {
	db, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.Migrate(db); err != nil {
		return err
	}

	if err := seed.NewSeeder(db).SeedInitial(); err != nil {
		return err
	}

	fmt.Println("Seed posts inserted")
	return nil
}

func runSeedDemo(users int) error {
	db, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.Migrate(db); err != nil {
		return err
	}

	if err := seed.NewSeeder(db).SeedDemo(users); err != nil {
		return err
	}

	fmt.Println("Demo data inserted")
	return nil
}

func runSeedClean() error {
	db, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seed.NewSeeder(db).Clean(); err != nil {
		return err
	}

	fmt.Println("All data removed")
	return nil
}

func runHealth() error {
	db, cleanup, err := openDatabase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.Health(db); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	fmt.Println("Database reachable")
	return nil
}
