package models

// Outcome is the classification of a server against the desired Auto IOPS state
type Outcome int

const (
	// OutcomeNeedsUpdate: supported tier, Auto IOPS not yet enabled
	OutcomeNeedsUpdate Outcome = iota
	// OutcomeAlreadyEnabled: supported tier, nothing to do
	OutcomeAlreadyEnabled
	// OutcomeIneligible: tier outside SupportedTiers
	OutcomeIneligible
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNeedsUpdate:
		return "NeedsUpdate"
	case OutcomeAlreadyEnabled:
		return "AlreadyEnabled"
	case OutcomeIneligible:
		return "Ineligible"
	default:
		return "Unknown"
	}
}

// Decision pairs a server with its classification
type Decision struct {
	Server  FlexibleServer
	Outcome Outcome
}
