package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/pickbetter/labelscan/internal/cloudwriter"
	"github.com/pickbetter/labelscan/internal/models"
)

// Export writes the given history items in the configured format to
// the configured destination and returns the path or object key it
// wrote.
func Export(items []models.HistoryItem, cfg models.ExportConfig) (string, error) {
	format := cfg.Format
	if format == "" {
		format = "json"
	}
	name := exportName(format, time.Now())

	switch format {
	case "json", "csv":
		w, target, err := openWriter(cfg, name)
		if err != nil {
			return "", err
		}
		if format == "json" {
			err = writeJSON(w, items)
		} else {
			err = writeCSV(w, items)
		}
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", err
		}
		return target, nil
	case "parquet":
		return writeParquet(items, cfg, name)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

func exportName(format string, at time.Time) string {
	return fmt.Sprintf("scan_history_%s.%s", at.Format("20060102_150405"), format)
}

func openWriter(cfg models.ExportConfig, name string) (io.WriteCloser, string, error) {
	if cfg.Destination == "s3" {
		factory, err := cloudwriter.NewS3WriterFactory(cfg.S3Region)
		if err != nil {
			return nil, "", err
		}
		w, err := factory.NewWriter(cfg.S3Bucket, name)
		if err != nil {
			return nil, "", err
		}
		return w, fmt.Sprintf("s3://%s/%s", cfg.S3Bucket, name), nil
	}

	dir := cfg.OutputPath
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, path, nil
}

func writeJSON(w io.Writer, items []models.HistoryItem) error {
	records := make([]Record, 0, len(items))
	bar := newBar(len(items), "exporting json")
	for _, item := range items {
		records = append(records, toRecord(item))
		bar.Add(1)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeCSV(w io.Writer, items []models.HistoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	bar := newBar(len(items), "exporting csv")
	for _, item := range items {
		if err := cw.Write(toRecord(item).csvRow()); err != nil {
			return err
		}
		bar.Add(1)
	}
	cw.Flush()
	return cw.Error()
}

func newBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
}
