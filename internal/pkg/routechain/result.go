package routechain

// Outcome describes how far a chain got.
type Outcome string

const (
	// OutcomeEmptyInput means there were no links to chain.
	OutcomeEmptyInput Outcome = "empty_input"
	// OutcomeStartNotFound means no link departs from the start station.
	OutcomeStartNotFound Outcome = "start_not_found"
	// OutcomeBroken means the chain stopped before every link was used.
	OutcomeBroken Outcome = "broken"
	// OutcomeComplete means every link is part of the chain.
	OutcomeComplete Outcome = "complete"
)

// Result is a chain together with the reason it ended.
type Result[L Link] struct {
	Links   []L
	Outcome Outcome
	// Unreached counts the input links missing from Links.
	Unreached int
}

// Complete reports whether every input link was chained.
func (r Result[L]) Complete() bool {
	return r.Outcome == OutcomeComplete
}

// Resolve orders links like Order and classifies the result, so callers can
// tell an empty route from a missing start station or a gap in the route.
func Resolve[L Link](links []L, start string) Result[L] {
	chain := Order(links, start)
	r := Result[L]{Links: chain, Unreached: len(links) - len(chain)}

	switch {
	case len(links) == 0:
		r.Outcome = OutcomeEmptyInput
	case len(chain) == 0:
		r.Outcome = OutcomeStartNotFound
	case r.Unreached > 0:
		r.Outcome = OutcomeBroken
	default:
		r.Outcome = OutcomeComplete
	}
	return r
}
