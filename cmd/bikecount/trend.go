// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bikecount/internal/convert"
	"github.com/pdiddy/bikecount/internal/store"
	"github.com/pdiddy/bikecount/internal/trend"
	"github.com/pdiddy/bikecount/pkg/types"
)

var trendCmd = &cobra.Command{
	Use:   "trend [csv]",
	Short: "Report half-year averages and the trend of daily totals",
	Long: `Trend reads a converted CSV (or the store with --from-store), keeps the
readings of the configured stations from the configured start day with a
positive total, averages them per half-year, and fits a least-squares trend
line. Stations, start and marker days come from the trend section of the
config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	trendCmd.Flags().Bool("from-store", false, "read readings from the store database instead of a CSV")

	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	fromStore, _ := cmd.Flags().GetBool("from-store")

	var readings []types.Reading
	switch {
	case fromStore:
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		if readings, err = s.Readings(cmd.Context()); err != nil {
			return err
		}
	case len(args) == 1:
		if readings, err = convert.ReadCSV(args[0]); err != nil {
			return err
		}
	default:
		return errors.New("provide a CSV file or --from-store")
	}

	report, err := trend.Aggregate(readings, cfg.Trend)
	if err != nil {
		return err
	}
	return writeTrend(cmd.OutOrStdout(), report, format)
}

func writeTrend(w io.Writer, report trend.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if len(report.Points) == 0 {
		fmt.Fprintln(w, "No data.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %10s  %7s\n", "Period", "Mean", "Samples")
	for _, p := range report.Points {
		fmt.Fprintf(w, "%-8s  %10.1f  %7d\n", p.Period, p.Mean, p.Samples)
	}
	fmt.Fprintf(w, "\nTrend: %.1f (%s) -> %.1f (%s)\n",
		report.Trend.From.Mean, report.Trend.From.Period,
		report.Trend.To.Mean, report.Trend.To.Period)
	if report.Marker != "" {
		where := "outside"
		if report.MarkerInRange {
			where = "within"
		}
		fmt.Fprintf(w, "Marker %s is %s the reported range\n", report.Marker, where)
	}
	if report.Skipped > 0 {
		fmt.Fprintf(w, "%d readings skipped by filters\n", report.Skipped)
	}
	return nil
}
