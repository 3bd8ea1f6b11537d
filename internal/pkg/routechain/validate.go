package routechain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateSegment is returned when two links share an id.
	ErrDuplicateSegment = errors.New("duplicate segment id")
	// ErrSelfLoop is returned for a link that ends where it departs.
	ErrSelfLoop = errors.New("segment starts and ends at the same station")
	// ErrBranchingTopology is returned when two links depart from one station.
	ErrBranchingTopology = errors.New("more than one segment departs from a station")
	// ErrMissingStation is returned for a link without a departure or end station.
	ErrMissingStation = errors.New("segment is missing a station")
)

// Validate checks that links form a simple path topology before they are
// stored. Order tolerates branching by taking the first match; routes written
// through Validate never rely on that.
func Validate[L Link](links []L) error {
	ids := make(map[string]struct{}, len(links))
	departures := make(map[string]string, len(links))

	for _, l := range links {
		if l.From() == "" || l.To() == "" {
			return fmt.Errorf("segment %q: %w", l.LinkID(), ErrMissingStation)
		}
		if _, ok := ids[l.LinkID()]; ok {
			return fmt.Errorf("segment %q: %w", l.LinkID(), ErrDuplicateSegment)
		}
		ids[l.LinkID()] = struct{}{}

		if l.From() == l.To() {
			return fmt.Errorf("segment %q at station %q: %w", l.LinkID(), l.From(), ErrSelfLoop)
		}
		if other, ok := departures[l.From()]; ok {
			return fmt.Errorf("segments %q and %q both depart from station %q: %w",
				other, l.LinkID(), l.From(), ErrBranchingTopology)
		}
		departures[l.From()] = l.LinkID()
	}
	return nil
}
