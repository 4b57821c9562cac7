package pipeline

import (
	"strings"
	"time"
)

// StageChange is the record appended to a case history for every accepted
// transition.
type StageChange struct {
	FromStage Stage     `json:"from_stage"`
	ToStage   Stage     `json:"to_stage"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// Advance moves a case one step forward in the active pipeline. Advancing
// from the last active stage reaches disbursed. Terminal stages reject with
// ErrStageTerminal.
func Advance(current Stage, notes string, now time.Time) (StageChange, error) {
	next, err := current.Next()
	if err != nil {
		return StageChange{}, err
	}
	return StageChange{
		FromStage: current,
		ToStage:   next,
		Notes:     notes,
		ChangedAt: now,
	}, nil
}

// Decline moves a case from any non-terminal stage directly to declined.
// A non-empty reason is required.
func Decline(current Stage, reason string, now time.Time) (StageChange, error) {
	return closeOut(current, StageDeclined, reason, now)
}

// Withdraw moves a case from any non-terminal stage directly to withdrawn.
// A non-empty reason is required.
func Withdraw(current Stage, reason string, now time.Time) (StageChange, error) {
	return closeOut(current, StageWithdrawn, reason, now)
}

func closeOut(current, target Stage, reason string, now time.Time) (StageChange, error) {
	if !current.IsValid() {
		return StageChange{}, ErrUnknownStage
	}
	if current.IsTerminal() {
		return StageChange{}, ErrStageTerminal
	}
	if strings.TrimSpace(reason) == "" {
		return StageChange{}, ErrReasonRequired
	}
	return StageChange{
		FromStage: current,
		ToStage:   target,
		Notes:     reason,
		ChangedAt: now,
	}, nil
}

// SetStage jumps a case to any valid stage, forward or backward. This is the
// one deliberately permissive operation, used for manual corrections and
// board drag-and-drop. The target must still be a known stage.
func SetStage(current Stage, target Stage, notes string, now time.Time) (StageChange, error) {
	if !target.IsValid() {
		return StageChange{}, ErrUnknownStage
	}
	return StageChange{
		FromStage: current,
		ToStage:   target,
		Notes:     notes,
		ChangedAt: now,
	}, nil
}
