// Package state persists reconciliation reports after a successful run
package state

import (
	"context"
	"fmt"

	"github.com/hemantobora/auto-iops/internal/models"
)

// ReportStore saves a finished report and returns where it was written
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.ReconciliationReport) (string, error)

	// GetProviderType returns "file", "s3" or "azblob"
	GetProviderType() string
}

// ValidationError represents a report validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ValidateReport checks that a report is complete enough to store
func ValidateReport(report *models.ReconciliationReport) error {
	if report == nil {
		return ValidationError{Field: "report", Message: "report cannot be nil"}
	}
	if report.ID == "" {
		return ValidationError{Field: "id", Message: "report ID is required"}
	}
	if report.SubscriptionID == "" {
		return ValidationError{Field: "subscription_id", Message: "subscription ID is required"}
	}
	if report.FinishedAt.IsZero() {
		return ValidationError{Field: "finished_at", Message: "only finished runs can be stored"}
	}
	if report.FinishedAt.Before(report.StartedAt) {
		return ValidationError{Field: "finished_at", Message: "finish time precedes start time"}
	}
	return nil
}

// SaveAll writes the report to every store in order and stops at the first failure
func SaveAll(ctx context.Context, report *models.ReconciliationReport, stores ...ReportStore) ([]string, error) {
	var locations []string
	for _, s := range stores {
		loc, err := s.SaveReport(ctx, report)
		if err != nil {
			return locations, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
