// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns an RDF/XML export of bicycle-counter readings into a
// flat CSV file. The pipeline is linear: load the document, detect the record
// namespace, find the records, build one row per record, write the CSV.
// Any failure aborts the run; an export without records is not a failure.
package convert

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/bikecount/internal/rdf"
	"github.com/pdiddy/bikecount/internal/source"
	"github.com/pdiddy/bikecount/pkg/types"
)

// Result describes a finished conversion.
type Result struct {
	Source      string
	Destination string
	Namespace   string
	Records     int

	// Written is false when no records were found; the destination is then
	// left untouched.
	Written bool
}

// Run converts the document at src (path or URL) into the CSV file dst.
// Progress lines ([OK], [WARN]) go to w.
func Run(ctx context.Context, cfg types.ConvertConfig, src, dst string, w io.Writer) (Result, error) {
	res := Result{Source: src, Destination: dst}

	readings, ns, err := Extract(ctx, cfg, src)
	if err != nil {
		return res, err
	}
	res.Namespace = ns

	if len(readings) == 0 {
		fmt.Fprintf(w, "[WARN] no <%s> elements found in the document\n", types.RecordTag)
		return res, nil
	}

	if err := WriteCSV(dst, readings); err != nil {
		return res, err
	}
	res.Records = len(readings)
	res.Written = true

	if cfg.Manifest {
		m := Manifest{
			Source:      src,
			Destination: dst,
			Namespace:   ns,
			RecordTag:   types.RecordTag,
			Fields:      types.Fields,
			Records:     res.Records,
			ConvertedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := WriteManifest(ManifestPath(dst), m); err != nil {
			return res, err
		}
	}

	fmt.Fprintf(w, "[OK] converted '%s' -> '%s' (%d records)\n", src, dst, res.Records)
	return res, nil
}

// Extract loads the document at src and returns its readings in document
// order together with the detected record namespace.
func Extract(ctx context.Context, cfg types.ConvertConfig, src string) ([]types.Reading, string, error) {
	rc, err := source.Open(ctx, src, source.Options{HTTPConfig: cfg.HTTPConfig})
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	root, err := rdf.Load(rc)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", src, err)
	}

	ns, err := rdf.DetectNamespace(root, types.RecordTag)
	if err != nil {
		return nil, "", err
	}

	records := rdf.FindRecords(root, ns, types.RecordTag)
	readings := make([]types.Reading, len(records))
	for i, rec := range records {
		row := rdf.BuildRow(rec, ns, types.Fields)
		if cfg.Normalize {
			for j := range row {
				row[j] = norm.NFC.String(row[j])
			}
		}
		readings[i] = types.ReadingFromRow(row)
	}
	return readings, ns, nil
}
