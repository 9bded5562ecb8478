package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/pickbetter/labelscan/internal/cloudwriter"
	"github.com/pickbetter/labelscan/internal/models"
)

func writeParquet(items []models.HistoryItem, cfg models.ExportConfig, name string) (string, error) {
	var fw source.ParquetFile
	var target string

	if cfg.Destination == "s3" {
		factory, err := cloudwriter.NewS3WriterFactory(cfg.S3Region)
		if err != nil {
			return "", err
		}
		cw, err := factory.NewWriter(cfg.S3Bucket, name)
		if err != nil {
			return "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cw)
		target = fmt.Sprintf("s3://%s/%s", cfg.S3Bucket, name)
	} else {
		dir := cfg.OutputPath
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
		target = filepath.Join(dir, name)
		var err error
		fw, err = local.NewLocalFileWriter(target)
		if err != nil {
			return "", fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(Record), 4)
	if err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	bar := newBar(len(items), "exporting parquet")
	for _, item := range items {
		if err := pw.Write(toRecord(item)); err != nil {
			pw.WriteStop()
			fw.Close()
			return "", fmt.Errorf("failed to write record: %w", err)
		}
		bar.Add(1)
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", err
	}
	if err := fw.Close(); err != nil {
		return "", err
	}
	return target, nil
}
