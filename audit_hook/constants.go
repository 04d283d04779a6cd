package audithook

// Action constants for audit events.
const (
	// Bond actions
	ActionBonded   = "bond.bonded"
	ActionUnbonded = "bond.unbonded"

	// Escrow actions
	ActionEscrowed        = "escrow.escrowed"
	ActionReleased        = "escrow.released"
	ActionEscrowRejected  = "escrow.rejected"
	ActionReleaseRejected = "escrow.release_rejected"

	// Identity actions
	ActionDispatcherSet = "identity.dispatcher_set"
)

// Actions lists every action the extension emits.
var Actions = []string{
	ActionBonded,
	ActionUnbonded,
	ActionEscrowed,
	ActionReleased,
	ActionEscrowRejected,
	ActionReleaseRejected,
	ActionDispatcherSet,
}

// Resource constants for audit events.
const (
	ResourceBond       = "bond"
	ResourceEscrow     = "escrow"
	ResourceDispatcher = "dispatcher"
)

// Category constants for audit events.
const (
	CategoryBonding = "bonding"
	CategoryEscrow  = "escrow"
	CategoryAccess  = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
