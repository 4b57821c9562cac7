package pipeline

import "errors"

// Typed policy errors. Handlers map these onto HTTP status codes and
// machine-readable error codes; nothing in this package panics or returns
// free-text-only errors.
var (
	// ErrUnknownStage is returned for a stage name outside the pipeline.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrStageTerminal is returned when advance, decline or withdraw is
	// attempted on a case already in a terminal stage.
	ErrStageTerminal = errors.New("stage is terminal")

	// ErrStatusTerminal is returned when a lead or client status transition
	// is attempted from a terminal status.
	ErrStatusTerminal = errors.New("status is terminal")

	// ErrReasonRequired is returned when decline, withdraw or a terminal
	// status transition is attempted without a reason.
	ErrReasonRequired = errors.New("reason is required")

	// ErrInvalidTransition is returned for a status change outside the
	// allowed transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownKind is returned for a document or bank form kind outside
	// the required checklist for the entity.
	ErrUnknownKind = errors.New("unknown checklist kind")
)
