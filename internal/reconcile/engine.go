// Package reconcile walks a subscription's MySQL flexible servers and
// enables Auto IOPS on every eligible server that does not have it yet.
//
// A run is sequential: resource groups in discovery order, servers in
// discovery order, one blocking call at a time. Any remote failure aborts
// the run and no partial result is returned.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hemantobora/auto-iops/internal"
	"github.com/hemantobora/auto-iops/internal/models"
)

// TargetSelector picks the server to act on within a resource group. An
// empty name means every server in the group.
type TargetSelector interface {
	SelectTarget(ctx context.Context, resourceGroup string, servers []models.ServerRef) (string, error)
}

// FixedTarget applies the same target server name to every resource group
type FixedTarget string

func (f FixedTarget) SelectTarget(context.Context, string, []models.ServerRef) (string, error) {
	return strings.TrimSpace(string(f)), nil
}

// TargetFunc adapts a function to TargetSelector
type TargetFunc func(ctx context.Context, resourceGroup string, servers []models.ServerRef) (string, error)

func (f TargetFunc) SelectTarget(ctx context.Context, resourceGroup string, servers []models.ServerRef) (string, error) {
	return f(ctx, resourceGroup, servers)
}

// Engine runs the discovery, classification and mutation pipeline
type Engine struct {
	provider internal.Provider
	out      io.Writer
}

// NewEngine creates an engine that prints progress to out
func NewEngine(provider internal.Provider, out io.Writer) *Engine {
	if out == nil {
		out = io.Discard
	}
	return &Engine{provider: provider, out: out}
}

// Run reconciles every server in scope. target may be nil.
func (e *Engine) Run(ctx context.Context, scope models.Scope, target TargetSelector) (models.ReconciliationResult, error) {
	if err := scope.Validate(); err != nil {
		return models.ReconciliationResult{}, err
	}
	if target == nil {
		target = FixedTarget("")
	}

	groups, err := e.resourceGroups(ctx, scope)
	if err != nil {
		return models.ReconciliationResult{}, err
	}

	reporter := NewReporter()
	for _, group := range groups {
		if err := e.reconcileGroup(ctx, group, target, reporter); err != nil {
			return models.ReconciliationResult{}, err
		}
	}
	return reporter.Summarize(), nil
}

func (e *Engine) resourceGroups(ctx context.Context, scope models.Scope) ([]string, error) {
	if scope.Kind == models.ScopeResourceGroup {
		return []string{scope.ResourceGroup}, nil
	}
	groups, err := e.provider.ListResourceGroups(ctx)
	if err != nil {
		return nil, asDiscoveryError("", err)
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names, nil
}

func (e *Engine) reconcileGroup(ctx context.Context, group string, target TargetSelector, reporter *Reporter) error {
	servers, err := e.provider.ListServers(ctx, group)
	if err != nil {
		return asDiscoveryError(group, err)
	}
	if len(servers) == 0 {
		fmt.Fprintf(e.out, "⏭️  [SKIP] No MySQL flexible servers found in resource group: %s\n", group)
		return nil
	}

	fmt.Fprintf(e.out, "\n📂 MySQL flexible servers in %s:\n", group)
	for _, s := range servers {
		fmt.Fprintf(e.out, "  - %s\n", s.Name)
	}

	targetName, err := target.SelectTarget(ctx, group, servers)
	if err != nil {
		return fmt.Errorf("target selection for resource group '%s': %w", group, err)
	}
	targetName = strings.TrimSpace(targetName)

	matched := false
	for _, ref := range servers {
		if targetName != "" && !strings.EqualFold(ref.Name, targetName) {
			continue
		}
		matched = true
		if err := e.reconcileServer(ctx, group, ref.Name, reporter); err != nil {
			return err
		}
	}
	if targetName != "" && !matched {
		fmt.Fprintf(e.out, "⚠️  Server '%s' not found in resource group %s\n", targetName, group)
	}
	return nil
}

func (e *Engine) reconcileServer(ctx context.Context, group, name string, reporter *Reporter) error {
	server, err := e.fetchServer(ctx, group, name)
	if err != nil {
		return err
	}

	decision := Classify(*server)
	switch decision.Outcome {
	case models.OutcomeIneligible:
		fmt.Fprintf(e.out, "🚫 [INELIGIBLE] %s (Tier: %s)\n", server.Name, server.Tier)
	case models.OutcomeAlreadyEnabled:
		fmt.Fprintf(e.out, "✅ [SKIP] Auto IOPS already enabled for %s\n", server.Name)
	case models.OutcomeNeedsUpdate:
		fmt.Fprintf(e.out, "🔧 [UPDATE] Enabling Auto IOPS for %s (Tier: %s)...\n", server.Name, server.Tier)
		if err := e.provider.EnableAutoIOScaling(ctx, group, server.Name); err != nil {
			var me *models.MutationError
			if !errors.As(err, &me) {
				err = &models.MutationError{ResourceGroup: group, Server: server.Name, Cause: err}
			}
			return err
		}
	}
	reporter.Record(decision)
	return nil
}

func (e *Engine) fetchServer(ctx context.Context, group, name string) (*models.FlexibleServer, error) {
	server, err := e.provider.GetServer(ctx, group, name)
	if err != nil {
		var cfe *models.ConfigFetchError
		if !errors.As(err, &cfe) {
			err = &models.ConfigFetchError{ResourceGroup: group, Server: name, Cause: err}
		}
		return nil, err
	}
	return server, nil
}

func asDiscoveryError(group string, err error) error {
	var de *models.DiscoveryError
	if errors.As(err, &de) {
		return err
	}
	return &models.DiscoveryError{ResourceGroup: group, Cause: err}
}

// GroupInventory is the read-only view of one resource group
type GroupInventory struct {
	ResourceGroup string                  `json:"resource_group"`
	Servers       []models.FlexibleServer `json:"servers"`
}

// Discover lists every server in scope with its configuration without
// changing anything. Empty resource groups are included with no servers.
func (e *Engine) Discover(ctx context.Context, scope models.Scope) ([]GroupInventory, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	groups, err := e.resourceGroups(ctx, scope)
	if err != nil {
		return nil, err
	}

	inventory := make([]GroupInventory, 0, len(groups))
	for _, group := range groups {
		refs, err := e.provider.ListServers(ctx, group)
		if err != nil {
			return nil, asDiscoveryError(group, err)
		}
		gi := GroupInventory{ResourceGroup: group, Servers: []models.FlexibleServer{}}
		for _, ref := range refs {
			server, err := e.fetchServer(ctx, group, ref.Name)
			if err != nil {
				return nil, err
			}
			gi.Servers = append(gi.Servers, *server)
		}
		inventory = append(inventory, gi)
	}
	return inventory, nil
}
