package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const reportTimestampLayout = "20060102_150405"

// WriteReport writes the summary as indented JSON into dir, named
// upstash_verify_results_<timestamp>.json, and returns the path.
func WriteReport(summary Summary, dir string, now time.Time) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal verify report: %w", err)
	}

	name := fmt.Sprintf("upstash_verify_results_%s.json", now.Format(reportTimestampLayout))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write verify report: %w", err)
	}
	return path, nil
}
