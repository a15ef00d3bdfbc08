package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/utils"
)

// FileStore writes reports as JSON to a local path
type FileStore struct {
	path string
}

// NewFileStore creates a store that writes to path. If path is an existing
// directory, each report is written as {dir}/{id}.json.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) GetProviderType() string {
	return "file"
}

// SaveReport writes the report and returns the file path
func (s *FileStore) SaveReport(_ context.Context, report *models.ReconciliationReport) (string, error) {
	if err := ValidateReport(report); err != nil {
		return "", fmt.Errorf("invalid report: %w", err)
	}

	target := s.path
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, report.ID+".json")
	}

	data, err := utils.ToPrettyJSON(report)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &models.ProviderError{Provider: "file", Operation: "upload", Resource: dir, Cause: err}
		}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", &models.ProviderError{Provider: "file", Operation: "upload", Resource: target, Cause: err}
	}
	return target, nil
}
