package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fieldwork-data/coverage.report/internal/analysis"
	"github.com/fieldwork-data/coverage.report/internal/config"
	"github.com/fieldwork-data/coverage.report/internal/db"
	"github.com/fieldwork-data/coverage.report/internal/fieldops"
	"github.com/fieldwork-data/coverage.report/internal/fieldops/monitor"
)

// loadParams resolves the analysis parameters from the config file, or the
// defaults when no config is set.
func loadParams() fieldops.Params {
	cfg := config.EmptyAnalysisConfig()
	if *configPath != "" {
		loaded, err := config.LoadAnalysisConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	return fieldops.Params{
		EpsMeters:           cfg.GetEpsMeters(),
		MinSurfaceHa:        cfg.GetMinSurfaceHa(),
		Alpha:               cfg.GetAlpha(),
		JitterScale:         cfg.GetJitterScale(),
		TrackGap:            cfg.GetTrackGap(),
		TrackSimplifyMeters: cfg.GetTrackSimplifyMeters(),
	}
}

func newRunner(database *db.DB) *analysis.Runner {
	return analysis.NewRunner(database, fieldops.NewMemoryCache(), loadParams())
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	equipmentID := fs.String("equipment", "", "Equipment ID to process")
	fs.Parse(args)

	if *equipmentID == "" {
		log.Fatal("Usage: coverage-report analyze -equipment <id>")
	}

	database := openDB()
	defer database.Close()

	summary, err := newRunner(database).ProcessEquipment(*equipmentID)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
	fmt.Printf("Processed %s: %d days, %d zones, %d tracks\n",
		summary.EquipmentID, summary.Days, summary.Zones, summary.Tracks)
	printMetrics(summary.Metrics)
}

func runRecalculate(args []string) {
	fs := flag.NewFlagSet("recalculate", flag.ExitOnError)
	fs.Parse(args)

	database := openDB()
	defer database.Close()

	if err := newRunner(database).Recalculate(); err != nil {
		log.Fatalf("Recalculation failed: %v", err)
	}
	fmt.Println("Recalculation complete")
}

func runMetrics(args []string) {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	equipmentID := fs.String("equipment", "", "Equipment ID")
	start := fs.String("start", "", "Start date (inclusive, YYYY-MM-DD)")
	end := fs.String("end", "", "End date (inclusive, YYYY-MM-DD)")
	fs.Parse(args)

	if *equipmentID == "" {
		log.Fatal("Usage: coverage-report metrics -equipment <id> [-start date] [-end date]")
	}

	database := openDB()
	defer database.Close()

	agg, err := newRunner(database).AggregatedZones(*equipmentID, *start, *end)
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}

	printMetrics(agg.Metrics)
	stats := fieldops.ComputeSurfaceStats(agg.Cells)
	fmt.Printf("Cells: %d (max %d passes)\n", stats.Cells, stats.MaxPassCount)
	fmt.Printf("Cell surface: mean %.3f ha, median %.3f ha, stddev %.3f ha\n",
		stats.MeanHa, stats.MedianHa, stats.StdDevHa)
}

func printMetrics(m fieldops.EquipmentMetrics) {
	fmt.Printf("Total: %.2f ha\n", m.TotalHectares)
	fmt.Printf("Relative: %.2f ha\n", m.RelativeHectares)
	fmt.Printf("Distance between zones: %.2f km\n", m.DistanceBetweenZonesMeters/1000)
}

func runPlot(args []string) {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	equipmentID := fs.String("equipment", "", "Equipment ID")
	start := fs.String("start", "", "Start date (inclusive, YYYY-MM-DD)")
	end := fs.String("end", "", "End date (inclusive, YYYY-MM-DD)")
	out := fs.String("out", "partition.png", "Output PNG path")
	fs.Parse(args)

	if *equipmentID == "" {
		log.Fatal("Usage: coverage-report plot -equipment <id> [-start date] [-end date] [-out file]")
	}

	database := openDB()
	defer database.Close()

	eq, err := database.GetEquipment(*equipmentID)
	if err != nil {
		log.Fatalf("Failed to resolve equipment: %v", err)
	}
	agg, err := newRunner(database).AggregatedZones(*equipmentID, *start, *end)
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}

	if err := monitor.PlotPartition(agg.Cells, eq.Name, *out); err != nil {
		log.Fatalf("Plot failed: %v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	equipmentID := fs.String("equipment", "", "Equipment ID")
	start := fs.String("start", "", "Start date (inclusive, YYYY-MM-DD)")
	end := fs.String("end", "", "End date (inclusive, YYYY-MM-DD)")
	out := fs.String("out", "report.html", "Output HTML path")
	fs.Parse(args)

	if *equipmentID == "" {
		log.Fatal("Usage: coverage-report report -equipment <id> [-start date] [-end date] [-out file]")
	}

	database := openDB()
	defer database.Close()

	eq, err := database.GetEquipment(*equipmentID)
	if err != nil {
		log.Fatalf("Failed to resolve equipment: %v", err)
	}
	zones, err := database.GetZones(*equipmentID, *start, *end)
	if err != nil {
		log.Fatalf("Failed to load zones: %v", err)
	}
	agg, err := newRunner(database).AggregatedZones(*equipmentID, *start, *end)
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}

	daily := make(map[string]float64)
	for _, z := range zones {
		daily[z.Date] += z.SurfaceHa
	}

	if err := monitor.WriteCoverageReport(*out, eq.Name, daily, agg.Metrics); err != nil {
		log.Fatalf("Report failed: %v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

// runSeed imports GPS fixes from a CSV export (timestamp,latitude,longitude
// per row, RFC3339 timestamps). The equipment is created if it does not
// exist yet.
func runSeed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	name := fs.String("name", "", "Equipment name")
	equipmentID := fs.String("equipment", "", "Existing equipment ID (otherwise created by name)")
	csvPath := fs.String("csv", "", "CSV file of fixes: timestamp,latitude,longitude")
	fs.Parse(args)

	if *csvPath == "" || (*name == "" && *equipmentID == "") {
		log.Fatal("Usage: coverage-report seed -csv <file> (-name <name> | -equipment <id>)")
	}

	database := openDB()
	defer database.Close()

	id := *equipmentID
	if id == "" {
		eq := &db.Equipment{Name: *name}
		if err := database.CreateEquipment(eq); err != nil {
			log.Fatalf("Failed to create equipment: %v", err)
		}
		id = eq.ID
		fmt.Printf("Created equipment %s (%s)\n", eq.Name, eq.ID)
	}

	positions, err := readFixesCSV(*csvPath, id)
	if err != nil {
		log.Fatalf("Failed to read fixes: %v", err)
	}

	inserted, err := database.InsertPositions(positions)
	if err != nil {
		log.Fatalf("Failed to insert fixes: %v", err)
	}
	fmt.Printf("Imported %d fixes (%d new)\n", len(positions), inserted)
}

func readFixesCSV(path, equipmentID string) ([]fieldops.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	var positions []fieldops.Position
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		line++

		// Skip a header row if present.
		if line == 1 && record[0] == "timestamp" {
			continue
		}

		ts, err := time.Parse(time.RFC3339, record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid timestamp %q: %w", line, record[0], err)
		}
		lat, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude %q: %w", line, record[1], err)
		}
		lon, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude %q: %w", line, record[2], err)
		}

		positions = append(positions, fieldops.Position{
			EquipmentID: equipmentID,
			Latitude:    lat,
			Longitude:   lon,
			Timestamp:   ts.UTC(),
		})
	}
	return positions, nil
}

func runEquipment(args []string) {
	fs := flag.NewFlagSet("equipment", flag.ExitOnError)
	fs.Parse(args)

	database := openDB()
	defer database.Close()

	all, err := database.GetAllEquipment()
	if err != nil {
		log.Fatalf("Failed to list equipment: %v", err)
	}
	if len(all) == 0 {
		fmt.Println("No equipment registered")
		return
	}
	for _, eq := range all {
		lastSeen := "never"
		if last, err := database.GetLastPosition(eq.ID); err == nil && last != nil {
			lastSeen = last.Timestamp.Format(time.RFC3339)
		}
		fmt.Printf("%s  %s  total %.2f ha, relative %.2f ha, last fix %s\n",
			eq.ID, eq.Name, eq.TotalHectares, eq.RelativeHectares, lastSeen)
	}
}
