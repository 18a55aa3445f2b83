// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bikecount/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store [csv...]",
	Short: "Load converted CSV files into the SQLite store",
	Long: `Store ingests converted CSV files into a SQLite database
(store.database in the config file). Unchanged files are skipped on later
runs; a changed file replaces its earlier readings. A per-station summary of
the whole store is printed afterwards.`,
	RunE: runStore,
}

func init() {
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	for _, path := range args {
		if _, err := s.Ingest(cmd.Context(), path, out); err != nil {
			return err
		}
	}

	stations, err := s.Stations(cmd.Context())
	if err != nil {
		return err
	}
	writeStations(out, stations)
	return nil
}

func writeStations(w io.Writer, stations []store.StationSummary) {
	if len(stations) == 0 {
		fmt.Fprintln(w, "Store is empty.")
		return
	}

	fmt.Fprintf(w, "\n%-24s  %8s  %10s  %-10s  %-10s\n", "Station", "Readings", "Total", "First", "Last")
	for _, st := range stations {
		name := st.Station
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Fprintf(w, "%-24s  %8d  %10d  %-10.10s  %-10.10s\n", name, st.Readings, st.Total, st.First, st.Last)
	}
}
