package rangecache

import (
	"github.com/unkn0wn-root/rangecache/interval"
)

// gaps splits a request against current coverage.
type gaps[P any] struct {
	// missing pieces have no coverage and need a new load.
	missing []interval.Interval[P]
	// pending pieces are covered by a load in flight and need only be awaited.
	pending []interval.Interval[P]
}

// analyzeGaps computes which parts of req are neither loaded nor in flight
// (missing) and which are in flight but not loaded (pending). loaded must be
// merged and ascending; inflight may overlap and is merged here.
//
// Intervals are closed, so a piece keeps the endpoint it shares with the
// coverage it abuts: with [0,10] loaded, [5,15] leaves [10,15] missing.
func analyzeGaps[P any](req interval.Interval[P], loaded, inflight []interval.Interval[P], cmp interval.Compare[P]) gaps[P] {
	var g gaps[P]
	remainder := subtract(req, loaded, cmp)
	if len(remainder) == 0 {
		return g
	}
	busy := interval.MergeAll(inflight, cmp)
	for _, piece := range remainder {
		g.missing = append(g.missing, subtract(piece, busy, cmp)...)
		for _, p := range intersect(piece, busy, cmp) {
			if p.Point(cmp) && coveredBy(p.Start, g.missing, cmp) {
				continue // the new load fetches this point anyway
			}
			g.pending = append(g.pending, p)
		}
	}
	return g
}

// subtract returns the parts of r not covered by cover (merged, ascending).
func subtract[P any](r interval.Interval[P], cover []interval.Interval[P], cmp interval.Compare[P]) []interval.Interval[P] {
	var out []interval.Interval[P]
	cursor, covered := r.Start, false
	for _, c := range cover {
		if cmp(c.End, cursor) < 0 {
			continue
		}
		if cmp(c.Start, r.End) > 0 {
			break
		}
		if cmp(c.Start, cursor) > 0 {
			out = append(out, interval.Of(cursor, c.Start))
		}
		cursor, covered = c.End, true
		if cmp(cursor, r.End) >= 0 {
			return out
		}
	}
	if cmp(cursor, r.End) < 0 || !covered {
		out = append(out, interval.Of(cursor, r.End))
	}
	return out
}

// intersect returns the parts of r covered by cover (merged, ascending).
func intersect[P any](r interval.Interval[P], cover []interval.Interval[P], cmp interval.Compare[P]) []interval.Interval[P] {
	var out []interval.Interval[P]
	for _, c := range cover {
		if cmp(c.Start, r.End) > 0 {
			break
		}
		if !interval.Overlaps(r, c, cmp) {
			continue
		}
		iv := r
		if cmp(c.Start, iv.Start) > 0 {
			iv.Start = c.Start
		}
		if cmp(c.End, iv.End) < 0 {
			iv.End = c.End
		}
		out = append(out, iv)
	}
	return out
}

func coveredBy[P any](p P, ivs []interval.Interval[P], cmp interval.Compare[P]) bool {
	for _, iv := range ivs {
		if cmp(iv.Start, p) <= 0 && cmp(p, iv.End) <= 0 {
			return true
		}
	}
	return false
}
