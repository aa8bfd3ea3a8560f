package campaign

import "errors"

// Validation and state-conflict errors are caller-recoverable: the command
// layer surfaces them as ok=false results and the state is left untouched.
var (
	ErrUnknownJobType     = errors.New("unknown job type")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrMaxCapacityReached = errors.New("maximum facility capacity reached")

	ErrInsufficientStock = errors.New("insufficient stock at origin depot")
	ErrNoRoute           = errors.New("no route connects origin and destination")
	ErrInvalidPayload    = errors.New("shipment cargo is empty")

	ErrOperationAlreadyActive = errors.New("an operation is already active")
	ErrInvalidTarget          = errors.New("target is not in the scenario catalog")
	ErrInvalidOpType          = errors.New("unknown operation type")
	ErrInvalidPhaseDecision   = errors.New("invalid phase decision")
	ErrNoPendingDecision      = errors.New("no decision is pending")
	ErrNoPendingPhaseReport   = errors.New("no phase report is pending")
	ErrNoPendingAAR           = errors.New("no after-action report is pending")

	ErrActionPointsExhausted = errors.New("daily action points exhausted")
)

// ErrInsufficientEngagementData marks a scenario-configuration hole: an
// operation references a target whose terrain or infrastructure record is
// missing. This is a data-integrity bug, not user error; it aborts the tick.
var ErrInsufficientEngagementData = errors.New("insufficient engagement data for target")

// Recoverable reports whether an error belongs to the caller-recoverable
// taxonomy (validation or state conflict) rather than the fatal
// scenario-configuration category.
func Recoverable(err error) bool {
	return err != nil && !errors.Is(err, ErrInsufficientEngagementData)
}
