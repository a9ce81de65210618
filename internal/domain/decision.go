package domain

type Outcome int

const (
	OutcomeAccept Outcome = iota
	OutcomeReject
	OutcomeSkip
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "accepted"
	case OutcomeReject:
		return "rejected"
	case OutcomeSkip:
		return "skipped"
	default:
		return "unknown"
	}
}

type Decision struct {
	Outcome Outcome
	Reason  string
}

func Accept() Decision              { return Decision{Outcome: OutcomeAccept} }
func Reject(reason string) Decision { return Decision{Outcome: OutcomeReject, Reason: reason} }
func Skip(reason string) Decision   { return Decision{Outcome: OutcomeSkip, Reason: reason} }

// DecideFunc is called by a repository inside the update transaction with the
// locked current state. last is the most recent accepted history entry, if any.
type DecideFunc func(current Currency, last *HistoryEntry) Decision
