package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/fieldwork-data/coverage.report/internal/db"
)

var (
	dbPath        = flag.String("db", "", "Path to the coverage database (default $COVERAGE_DB or coverage.db)")
	configPath    = flag.String("config", "", "Path to analysis config JSON (default $COVERAGE_CONFIG)")
	migrationsDir = flag.String("migrations", "", "Path to migrations directory (default $COVERAGE_MIGRATIONS or migrations)")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	flag.Usage = printUsage
	flag.Parse()

	if *dbPath == "" {
		*dbPath = envOr("COVERAGE_DB", "coverage.db")
	}
	if *configPath == "" {
		*configPath = os.Getenv("COVERAGE_CONFIG")
	}
	if *migrationsDir == "" {
		*migrationsDir = envOr("COVERAGE_MIGRATIONS", "migrations")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "analyze":
		runAnalyze(args[1:])
	case "recalculate":
		runRecalculate(args[1:])
	case "metrics":
		runMetrics(args[1:])
	case "plot":
		runPlot(args[1:])
	case "report":
		runReport(args[1:])
	case "seed":
		runSeed(args[1:])
	case "equipment":
		runEquipment(args[1:])
	case "migrate":
		db.RunMigrateCommand(args[1:], *dbPath, *migrationsDir)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("coverage-report: batch coverage analysis over equipment GPS traces")
	fmt.Println()
	fmt.Println("Usage: coverage-report [options] <command> [command options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  seed         Import GPS fixes from a CSV export")
	fmt.Println("  equipment    List registered equipment")
	fmt.Println("  analyze      Process one equipment's fixes into zones and tracks")
	fmt.Println("  recalculate  Reprocess every equipment from scratch")
	fmt.Println("  metrics      Print coverage metrics for an equipment and period")
	fmt.Println("  plot         Render the aggregated partition as a PNG map")
	fmt.Println("  report       Render an HTML daily-coverage report")
	fmt.Println("  migrate      Manage the database schema")
	fmt.Println("  help         Show this help message")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
}

// openDB connects to the configured database, exiting on failure.
func openDB() *db.DB {
	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return database
}
