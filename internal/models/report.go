package models

import "time"

// ServerOutcome is one entry in a report bucket
type ServerOutcome struct {
	ResourceGroup string `json:"resource_group"`
	Name          string `json:"name"`
	Tier          Tier   `json:"tier"`
}

// ReconciliationResult is the three-way outcome of a run. Entries keep
// the order in which servers were classified.
type ReconciliationResult struct {
	Updated        []ServerOutcome `json:"updated"`
	AlreadyEnabled []ServerOutcome `json:"already_enabled"`
	Ineligible     []ServerOutcome `json:"ineligible"`
}

// UpdatedNames returns the names of servers that had Auto IOPS enabled.
func (r *ReconciliationResult) UpdatedNames() []string {
	return names(r.Updated)
}

// SkippedCount is the number of servers that already had Auto IOPS enabled.
func (r *ReconciliationResult) SkippedCount() int {
	return len(r.AlreadyEnabled)
}

// Total is the number of classified servers.
func (r *ReconciliationResult) Total() int {
	return len(r.Updated) + len(r.AlreadyEnabled) + len(r.Ineligible)
}

func names(entries []ServerOutcome) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

// ReconciliationReport is the exported form of a finished run
type ReconciliationReport struct {
	ID             string               `json:"id"`
	SubscriptionID string               `json:"subscription_id"`
	Scope          Scope                `json:"scope"`
	TargetServer   string               `json:"target_server,omitempty"`
	StartedAt      time.Time            `json:"started_at"`
	FinishedAt     time.Time            `json:"finished_at"`
	Result         ReconciliationResult `json:"result"`
}
