package reconcile

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/logrusorgru/aurora/v4"

	"github.com/hemantobora/auto-iops/internal/models"
)

// Reporter accumulates per-server outcomes for one run. It is append-only
// and owned by a single engine.
type Reporter struct {
	result models.ReconciliationResult
}

// NewReporter creates an empty reporter
func NewReporter() *Reporter {
	return &Reporter{
		result: models.ReconciliationResult{
			Updated:        []models.ServerOutcome{},
			AlreadyEnabled: []models.ServerOutcome{},
			Ineligible:     []models.ServerOutcome{},
		},
	}
}

// Record files a decision in its bucket. A NeedsUpdate decision must only be
// recorded once the mutation has succeeded; it lands in the updated bucket.
func (r *Reporter) Record(d models.Decision) {
	entry := models.ServerOutcome{
		ResourceGroup: d.Server.ResourceGroup,
		Name:          d.Server.Name,
		Tier:          d.Server.Tier,
	}
	switch d.Outcome {
	case models.OutcomeNeedsUpdate:
		r.result.Updated = append(r.result.Updated, entry)
	case models.OutcomeAlreadyEnabled:
		r.result.AlreadyEnabled = append(r.result.AlreadyEnabled, entry)
	case models.OutcomeIneligible:
		r.result.Ineligible = append(r.result.Ineligible, entry)
	}
}

// Summarize returns a copy of the accumulated result.
func (r *Reporter) Summarize() models.ReconciliationResult {
	return models.ReconciliationResult{
		Updated:        append([]models.ServerOutcome{}, r.result.Updated...),
		AlreadyEnabled: append([]models.ServerOutcome{}, r.result.AlreadyEnabled...),
		Ineligible:     append([]models.ServerOutcome{}, r.result.Ineligible...),
	}
}

// RenderSummary prints the three-section summary of a finished run.
func RenderSummary(w io.Writer, result models.ReconciliationResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, aurora.Bold("📋 Summary:"))

	if len(result.Updated) > 0 {
		fmt.Fprintln(w, aurora.Green("Auto IOPS enabled for:"))
		for _, s := range result.Updated {
			fmt.Fprintf(w, "  - %s\n", s.Name)
		}
	} else {
		fmt.Fprintln(w, "No servers were updated.")
	}

	if len(result.AlreadyEnabled) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %d\n", aurora.Bold("Already enabled (skipped):"), len(result.AlreadyEnabled))
		for _, s := range result.AlreadyEnabled {
			fmt.Fprintf(w, "  - %s\n", s.Name)
		}
	}

	if len(result.Ineligible) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, aurora.Yellow("Ineligible servers (unsupported tier):"))
		t := tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
		t.AddHeader("NAME", "RESOURCE GROUP", "TIER")
		for _, s := range result.Ineligible {
			t.AddLine(s.Name, s.ResourceGroup, string(s.Tier))
		}
		t.Print()
	}
}
