package reconcile

import "github.com/hemantobora/auto-iops/internal/models"

// Classify decides what a server needs. Tier is checked first, so an
// unsupported tier is ineligible whatever its Auto IOPS state.
func Classify(server models.FlexibleServer) models.Decision {
	switch {
	case !server.Tier.IsSupported():
		return models.Decision{Server: server, Outcome: models.OutcomeIneligible}
	case server.AutoIOScalingEnabled():
		return models.Decision{Server: server, Outcome: models.OutcomeAlreadyEnabled}
	default:
		return models.Decision{Server: server, Outcome: models.OutcomeNeedsUpdate}
	}
}
