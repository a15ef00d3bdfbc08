package internal

import (
	"context"

	"github.com/hemantobora/auto-iops/internal/models"
)

// Provider defines the management API operations the reconciler needs.
// Implementations are bound to one subscription for the life of a run.
type Provider interface {
	// Discovery
	ListResourceGroups(ctx context.Context) ([]models.ResourceGroup, error)
	// ListServers returns an empty slice when the server collection is not found.
	ListServers(ctx context.Context, resourceGroup string) ([]models.ServerRef, error)

	// Configuration
	GetServer(ctx context.Context, resourceGroup, serverName string) (*models.FlexibleServer, error)

	// Mutation. Only ever sets Auto IOPS to Enabled.
	EnableAutoIOScaling(ctx context.Context, resourceGroup, serverName string) error

	// Provider info
	GetProviderType() string // Returns "azure"
	GetSubscriptionID() string
}

// AuthProvider supplies the subscription and bearer credential for a run
type AuthProvider interface {
	SubscriptionID(ctx context.Context) (string, error)
	AccessToken(ctx context.Context) (string, error)
}

// NamingStrategy defines how exported reports are named in object storage
type NamingStrategy interface {
	// ReportKey returns the object key for a report
	// Example: "auto-iops/reports/2026/10/19/20261019T101500Z-k3j9x2ab.json"
	ReportKey(report *models.ReconciliationReport) string

	// GenerateSuffix generates a random suffix for report ids
	GenerateSuffix() (string, error)

	// GetPrefix returns the naming prefix (e.g., "auto-iops")
	GetPrefix() string
}
