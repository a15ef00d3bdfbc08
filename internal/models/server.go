// Package models provides shared data structures
package models

// Tier is the service class reported by the provider under sku.tier.
// The set of values is open; only SupportedTiers can use Auto IOPS.
type Tier string

const (
	TierGeneralPurpose   Tier = "GeneralPurpose"
	TierBusinessCritical Tier = "BusinessCritical"
	TierBurstable        Tier = "Burstable"
)

// SupportedTiers is the closed set of tiers eligible for Auto IOPS scaling.
var SupportedTiers = map[Tier]bool{
	TierGeneralPurpose:   true,
	TierBusinessCritical: true,
}

// IsSupported reports whether the tier can have Auto IOPS enabled.
func (t Tier) IsSupported() bool {
	return SupportedTiers[t]
}

// AutoIOScaling is the storage auto-scaling flag of a server.
type AutoIOScaling string

const (
	AutoIOScalingEnabled  AutoIOScaling = "Enabled"
	AutoIOScalingDisabled AutoIOScaling = "Disabled"
	// AutoIOScalingUnknown means the field was absent from the fetched configuration.
	AutoIOScalingUnknown AutoIOScaling = ""
)

// ResourceGroup is a named container of resources within a subscription
type ResourceGroup struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// ServerRef is a flexible server as returned by the list call
type ServerRef struct {
	ResourceGroup string `json:"resource_group"`
	Name          string `json:"name"`
}

// FlexibleServer is the subset of a server's configuration the reconciler reads
type FlexibleServer struct {
	ResourceGroup string        `json:"resource_group"`
	Name          string        `json:"name"`
	Location      string        `json:"location,omitempty"`
	Tier          Tier          `json:"tier"`
	SKUName       string        `json:"sku_name,omitempty"`
	AutoIOScaling AutoIOScaling `json:"auto_io_scaling,omitempty"`
}

// AutoIOScalingEnabled reports whether Auto IOPS is already on.
// An absent value counts as disabled.
func (s FlexibleServer) AutoIOScalingEnabled() bool {
	return s.AutoIOScaling == AutoIOScalingEnabled
}

// StateLabel returns a display value for the Auto IOPS flag.
func (s FlexibleServer) StateLabel() string {
	if s.AutoIOScaling == AutoIOScalingUnknown {
		return "Unknown"
	}
	return string(s.AutoIOScaling)
}
