package naming

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/utils"
)

// DefaultNaming implements the NamingStrategy interface
type DefaultNaming struct {
	prefix string // "auto-iops"
}

// NewDefaultNaming creates a new default naming strategy
func NewDefaultNaming() *DefaultNaming {
	return &DefaultNaming{
		prefix: "auto-iops",
	}
}

func (n *DefaultNaming) GetPrefix() string {
	return n.prefix
}

// ReportKey returns the object key of a report
// Format: auto-iops/reports/{yyyy}/{mm}/{dd}/{scope}/{id}.json
func (n *DefaultNaming) ReportKey(report *models.ReconciliationReport) string {
	ts := report.StartedAt.UTC()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	scope := "all"
	if report.Scope.Kind == models.ScopeResourceGroup {
		scope = "rg-" + NormalizeSegment(report.Scope.ResourceGroup)
	}
	return path.Join(n.prefix, "reports", ts.Format("2006/01/02"), scope, report.ID+".json")
}

// GenerateSuffix generates a random alphanumeric suffix
func (n *DefaultNaming) GenerateSuffix() (string, error) {
	return utils.GenerateRandomSuffix(8)
}

// NewReportID builds a sortable report id: {timestamp}-{suffix}
func (n *DefaultNaming) NewReportID(started time.Time) (string, error) {
	suffix, err := n.GenerateSuffix()
	if err != nil {
		return "", fmt.Errorf("generate report id: %w", err)
	}
	return started.UTC().Format("20060102T150405Z") + "-" + suffix, nil
}

var invalidSegmentChars = regexp.MustCompile(`[^a-z0-9-]`)

// NormalizeSegment makes a resource group name safe for an object key segment
func NormalizeSegment(name string) string {
	// Convert to lowercase
	normalized := strings.ToLower(name)

	// Replace invalid characters with hyphens
	normalized = invalidSegmentChars.ReplaceAllString(normalized, "-")

	// Remove consecutive hyphens
	for strings.Contains(normalized, "--") {
		normalized = strings.ReplaceAll(normalized, "--", "-")
	}

	// Trim hyphens from start and end
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return "unnamed"
	}
	return normalized
}
