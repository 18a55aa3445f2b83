// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bikecount CLI. Without a
// subcommand it converts an RDF/XML export of bicycle-counter readings to
// CSV, asking for the input and output paths on the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bikecount/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the bikecount CLI.
var rootCmd = &cobra.Command{
	Use:   "bikecount [input] [output]",
	Short: "Convert bicycle-counter RDF/XML exports to CSV",
	Long: `bikecount converts the RDF/XML export of the bicycle counters
(colonnine conta bici) into a flat CSV with one row per reading. The XML
namespace of the records is detected from the document.

Run without arguments to be prompted for the input and output paths. The
input may also be an http(s) URL. Use trend and store to work with the
resulting CSV files.`,
	Args:          cobra.MaximumNArgs(2),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bikecount.yaml or ~/.config/bikecount/bikecount.yaml)")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "[WARN] loading .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bikecount")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bikecount"))
		}
	}

	viper.SetEnvPrefix("BIKECOUNT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "[WARN] reading config %s: %v\n", cfgFile, err)
	}
}

// setDefaults registers every config key with viper so that environment
// overrides are seen by Unmarshal.
func setDefaults(def types.Config) {
	viper.SetDefault("convert.timeout", def.Convert.Timeout)
	viper.SetDefault("convert.user_agent", "bikecount/"+version)
	viper.SetDefault("convert.manifest", def.Convert.Manifest)
	viper.SetDefault("convert.normalize", def.Convert.Normalize)
	viper.SetDefault("trend.stations", def.Trend.Stations)
	viper.SetDefault("trend.start", def.Trend.Start)
	viper.SetDefault("trend.marker", def.Trend.Marker)
	viper.SetDefault("store.database", def.Store.Database)
}

// loadConfig decodes the merged defaults, config file and environment.
// Defaults come from setDefaults so that a list set in the environment
// replaces the default list instead of being merged into it.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := execute(ctx, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and returns the process exit code. Errors
// are reported on stderr with an [ERROR] prefix.
func execute(ctx context.Context, stderr io.Writer) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return 1
	}
	return 0
}
