// Package routechain rebuilds the travel order of route segments.
//
// Segments are stored without a reliable order, so a route is reassembled by
// starting at its first station and repeatedly following the segment that
// departs from where the previous one ended.
package routechain

// Link is a directed edge between two stations.
type Link interface {
	LinkID() string
	From() string
	To() string
}

// Order returns the path of links that starts at the start station.
//
// At every step the first unused link (in input order) departing from the
// current station is taken. Links that cannot be reached are left out, so the
// result is empty when nothing departs from start. Order never modifies links.
func Order[L Link](links []L, start string) []L {
	chain := make([]L, 0, len(links))

	// Departure station -> link positions, preserving input order.
	departures := make(map[string][]int, len(links))
	for i, l := range links {
		departures[l.From()] = append(departures[l.From()], i)
	}

	used := make(map[string]struct{}, len(links))
	at := start
	for len(chain) < len(links) {
		next := -1
		for _, i := range departures[at] {
			if _, ok := used[links[i].LinkID()]; !ok {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}

		l := links[next]
		used[l.LinkID()] = struct{}{}
		chain = append(chain, l)
		at = l.To()
	}

	return chain
}

// Stations returns the station sequence walked by chain: the departure of the
// first link followed by the end of every link.
func Stations[L Link](chain []L) []string {
	if len(chain) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(chain)+1)
	out = append(out, chain[0].From())
	for _, l := range chain {
		out = append(out, l.To())
	}
	return out
}
