package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var now = time.Now

// exportJSON writes the report to OutputDir, gzipped when CompressOutput is set.
func (b *Backend) exportJSON() error {
	name := b.report.Session.UUID
	if name == "" {
		name = "session"
	}
	stamp := b.report.Session.StartTime
	if stamp.IsZero() {
		stamp = b.report.Session.EndTime.Time
	}
	filename := fmt.Sprintf("%s_%s.json", name, stamp.Format("20060102_150405"))
	if b.cfg.CompressOutput {
		filename += ".gz"
	}

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)
	if err := writeReport(outputPath, b.report, b.cfg.CompressOutput); err != nil {
		return err
	}
	b.lastExportPath = outputPath
	return nil
}

func writeReport(path string, r Report, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if !compress {
		if err := json.NewEncoder(f).Encode(r); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return f.Close()
	}

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(r); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return f.Close()
}

// ReadReport loads a report written by EndSession, compressed or not.
func ReadReport(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	var r Report
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Report{}, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		err = json.NewDecoder(gz).Decode(&r)
		if err != nil {
			return Report{}, fmt.Errorf("failed to decode report: %w", err)
		}
		return r, nil
	}
	if err := json.NewDecoder(f).Decode(&r); err != nil {
		return Report{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return r, nil
}
