package monitor

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fieldwork-data/coverage.report/internal/fieldops"
)

// WriteCoverageReport renders an HTML report for one equipment: a bar chart
// of worked hectares per day with the period totals in the subtitle.
func WriteCoverageReport(path, equipmentName string, dailyHectares map[string]float64, metrics fieldops.EquipmentMetrics) error {
	dates := make([]string, 0, len(dailyHectares))
	for d := range dailyHectares {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	values := make([]opts.BarData, len(dates))
	for i, d := range dates {
		values[i] = opts.BarData{Value: dailyHectares[d]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Coverage Report", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Daily coverage: %s", equipmentName),
			Subtitle: fmt.Sprintf("total %.2f ha, relative %.2f ha, %.1f km between zones",
				metrics.TotalHectares, metrics.RelativeHectares, metrics.DistanceBetweenZonesMeters/1000),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Hectares"}),
	)
	bar.SetXAxis(dates)
	bar.AddSeries("worked hectares", values,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
