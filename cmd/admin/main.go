package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var demoUsers int

var rootCmd = &cobra.Command{
	Use:   "safehaven-admin",
	Short: "Safe Haven admin CLI - database and seed management",
	Long: `Safe Haven admin CLI runs operational tasks against the backend database:
schema migration, seed data management, and connectivity checks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: .env file not found, using system environment variables")
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the fixed community posts (no-op when posts exist)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Fill the database with generated demo residents, posts and comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeedDemo(demoUsers)
	},
}

var seedCleanCmd = &cobra.Command{
	Use:   "seed-clean",
	Short: "Remove all data (use with caution)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeedClean()
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealth()
	},
}

func init() {
	seedDemoCmd.Flags().IntVar(&demoUsers, "users", 20, "Number of demo users to create")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(seedDemoCmd)
	rootCmd.AddCommand(seedCleanCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
