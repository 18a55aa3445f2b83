// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pdiddy/bikecount/pkg/types"
)

// WriteCSV creates (or truncates) path and writes the header followed by one
// row per reading. Lines end in CRLF as RFC 4180 prescribes. The file is
// closed on every return path.
func WriteCSV(path string, readings []types.Reading) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := EncodeCSV(f, readings); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// EncodeCSV writes readings as CSV to out.
func EncodeCSV(out io.Writer, readings []types.Reading) error {
	cw := csv.NewWriter(out)
	cw.UseCRLF = true
	sw := gocsv.NewSafeCSVWriter(cw)
	if err := gocsv.MarshalCSV(readings, sw); err != nil {
		return err
	}
	sw.Flush()
	return sw.Error()
}

// DecodeCSV reads a CSV produced by EncodeCSV. Columns are matched by header
// name, so column order and extra columns do not matter.
func DecodeCSV(in io.Reader) ([]types.Reading, error) {
	var readings []types.Reading
	if err := gocsv.Unmarshal(in, &readings); err != nil {
		return nil, fmt.Errorf("decoding CSV: %w", err)
	}
	return readings, nil
}

// ReadCSV decodes the CSV file at path.
func ReadCSV(path string) ([]types.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	readings, err := DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readings, nil
}
