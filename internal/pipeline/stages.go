// Package pipeline is the authoritative rule set for the mortgage case
// pipeline: stage ordering, transition policy, lead/client status policy,
// eligibility arithmetic and document checklists. It is pure logic with no
// I/O; persistence and HTTP enforcement build on top of it.
package pipeline

// Stage represents the pipeline position of a mortgage case
type Stage string

// Active stages, in pipeline order
const (
	StageProcessing    Stage = "processing"
	StageSubmitted     Stage = "submitted"
	StageUnderReview   Stage = "underReview"
	StagePreApproved   Stage = "preApproved"
	StageValuation     Stage = "valuation"
	StageFOLProcessing Stage = "folProcessing"
	StageFOLReceived   Stage = "folReceived"
	StageFOLSigned     Stage = "folSigned"
)

// Terminal stages - no outgoing transitions
const (
	StageDisbursed Stage = "disbursed"
	StageDeclined  Stage = "declined"
	StageWithdrawn Stage = "withdrawn"
)

// InitialStage is the stage every case starts in.
const InitialStage = StageProcessing

// activeOrder is the single source of truth for the active pipeline.
var activeOrder = []Stage{
	StageProcessing,
	StageSubmitted,
	StageUnderReview,
	StagePreApproved,
	StageValuation,
	StageFOLProcessing,
	StageFOLReceived,
	StageFOLSigned,
}

var terminalStages = map[Stage]bool{
	StageDisbursed: true,
	StageDeclined:  true,
	StageWithdrawn: true,
}

// ActiveStages returns the ordered active pipeline stages.
func ActiveStages() []Stage {
	out := make([]Stage, len(activeOrder))
	copy(out, activeOrder)
	return out
}

// TerminalStages returns the terminal stages (unordered set).
func TerminalStages() []Stage {
	return []Stage{StageDisbursed, StageDeclined, StageWithdrawn}
}

// IsTerminal reports whether the stage has no outgoing transitions.
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// IsValid reports whether the stage is a known active or terminal stage.
func (s Stage) IsValid() bool {
	if terminalStages[s] {
		return true
	}
	return s.activeIndex() >= 0
}

// activeIndex returns the position in the active order, or -1.
func (s Stage) activeIndex() int {
	for i, stage := range activeOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the stage an advance from s lands on. Advancing from the last
// active stage reaches disbursed. Terminal and unknown stages have no next
// stage.
func (s Stage) Next() (Stage, error) {
	if s.IsTerminal() {
		return "", ErrStageTerminal
	}
	idx := s.activeIndex()
	if idx < 0 {
		return "", ErrUnknownStage
	}
	if idx == len(activeOrder)-1 {
		return StageDisbursed, nil
	}
	return activeOrder[idx+1], nil
}

// ParseStage validates a stage name received over the wire.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !s.IsValid() {
		return "", ErrUnknownStage
	}
	return s, nil
}
