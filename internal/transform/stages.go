package transform

import "fmt"

// Stage describes how far a transformation run has progressed:
//
//	IDLE ──► PURGED ──► DIMENSIONS_POPULATED ──► FACTS_POPULATED ──► BRIDGE_POPULATED ──► COMPLETE
//
// The chain is strictly linear: every stage commits before the next begins,
// and a failure anywhere aborts the run. There is no partial-state resume —
// recovery is a fresh run from IDLE, which re-purges and rebuilds
// deterministically.
type Stage string

const (
	StageIdle       Stage = "IDLE"
	StagePurged     Stage = "PURGED"
	StageDimensions Stage = "DIMENSIONS_POPULATED"
	StageFacts      Stage = "FACTS_POPULATED"
	StageBridge     Stage = "BRIDGE_POPULATED"
	StageComplete   Stage = "COMPLETE"
)

// nextStage maps each stage to its sole successor.
var nextStage = map[Stage]Stage{
	StageIdle:       StagePurged,
	StagePurged:     StageDimensions,
	StageDimensions: StageFacts,
	StageFacts:      StageBridge,
	StageBridge:     StageComplete,
	// COMPLETE is terminal — no outgoing transition
}

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	switch st {
	case StageIdle, StagePurged, StageDimensions, StageFacts, StageBridge, StageComplete:
		return st, nil
	}
	return "", fmt.Errorf("unknown pipeline stage %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// stage chain.
func IsTransitionAllowed(from, to Stage) bool {
	next, ok := nextStage[from]
	return ok && next == to
}

// Next returns the successor of s, or false when s is terminal.
func (s Stage) Next() (Stage, bool) {
	next, ok := nextStage[s]
	return next, ok
}

// IsComplete returns true when the run has reached its terminal stage.
func IsComplete(s Stage) bool { return s == StageComplete }
