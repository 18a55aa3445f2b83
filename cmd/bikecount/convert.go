// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bikecount/internal/convert"
)

const (
	promptInput  = "Enter the path of the input RDF/XML file: "
	promptOutput = "Enter the path of the output CSV file: "
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert an RDF/XML export to CSV",
	Long: `Convert reads an RDF/XML document of bicycle-counter readings, detects
the namespace of the colonnine-conta-bici-record elements, and writes one CSV
row per record with the columns colonnina, totale, direzione_periferia,
direzione_centro, geo_point_2d and data.

Paths not given as arguments are asked for on the terminal. The output file
is overwritten. When the document holds no records a warning is printed and
the output file is left as it was.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, dst, err := promptPaths(cmd.InOrStdin(), cmd.OutOrStdout(), args)
	if err != nil {
		return err
	}

	_, err = convert.Run(cmd.Context(), cfg.Convert, src, dst, cmd.OutOrStdout())
	return err
}

// promptPaths returns the input and output paths, asking on out for each one
// missing from args.
func promptPaths(in io.Reader, out io.Writer, args []string) (src, dst string, err error) {
	r := bufio.NewReader(in)
	paths := make([]string, 2)
	copy(paths, args)

	for i, label := range []string{promptInput, promptOutput} {
		if paths[i] != "" {
			continue
		}
		if paths[i], err = promptLine(r, out, label); err != nil {
			return "", "", err
		}
	}
	return paths[0], paths[1], nil
}

func promptLine(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no path given: input closed")
		}
		return "", fmt.Errorf("reading path: %w", err)
	}

	path := strings.TrimSpace(line)
	if path == "" {
		return "", errors.New("no path given")
	}
	return path, nil
}
