package scanner

import "fmt"

// State is the navigation state of one scan attempt.
type State int

const (
	Idle State = iota
	Scanning
	ResultsReady
	ContributionNeeded
	ScanError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case ResultsReady:
		return "results_ready"
	case ContributionNeeded:
		return "contribution_needed"
	case ScanError:
		return "scan_error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is an input to the state machine.
type Event int

const (
	// ScanRequested starts a new attempt. It is legal from every
	// state; a racing scan simply supersedes the previous attempt.
	ScanRequested Event = iota
	// AnalysisReceived means the backend produced a canonical
	// analysis for the scanned barcode.
	AnalysisReceived
	// ProductUnknown means the barcode is not in the catalogue and
	// the user should be routed to the contribution flow.
	ProductUnknown
	// ScanFailed means transport or server failure for the attempt.
	ScanFailed
	// ContributionReviewed means a submitted contribution came back
	// with an analysis attached.
	ContributionReviewed
	// Dismissed returns to Idle from any terminal state.
	Dismissed
)

func (e Event) String() string {
	switch e {
	case ScanRequested:
		return "scan_requested"
	case AnalysisReceived:
		return "analysis_received"
	case ProductUnknown:
		return "product_unknown"
	case ScanFailed:
		return "scan_failed"
	case ContributionReviewed:
		return "contribution_reviewed"
	case Dismissed:
		return "dismissed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Transition is the pure transition function. It returns the new state
// and an error when the event is not legal in the current state, in
// which case the returned state equals the input state.
func Transition(s State, e Event) (State, error) {
	switch e {
	case ScanRequested:
		return Scanning, nil
	case Dismissed:
		return Idle, nil
	case AnalysisReceived:
		if s == Scanning {
			return ResultsReady, nil
		}
	case ProductUnknown:
		if s == Scanning {
			return ContributionNeeded, nil
		}
	case ScanFailed:
		if s == Scanning {
			return ScanError, nil
		}
	case ContributionReviewed:
		if s == ContributionNeeded {
			return ResultsReady, nil
		}
	}
	return s, fmt.Errorf("event %s not valid in state %s", e, s)
}
