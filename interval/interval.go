// Package interval implements the small amount of closed-interval algebra
// rangecache needs: ordering, merging and containment over any point type
// with a three-way comparator.
package interval

import (
	"fmt"
	"slices"
)

// Compare orders two points: negative if a < b, zero if equal, positive if a > b.
type Compare[P any] func(a, b P) int

// Interval is the closed range [Start, End].
type Interval[P any] struct {
	Start P
	End   P
}

// Of is shorthand for Interval[P]{Start: start, End: end}.
func Of[P any](start, end P) Interval[P] {
	return Interval[P]{Start: start, End: end}
}

// Valid reports whether Start <= End.
func (iv Interval[P]) Valid(cmp Compare[P]) bool {
	return cmp(iv.Start, iv.End) <= 0
}

// Point reports whether the interval is a single point.
func (iv Interval[P]) Point(cmp Compare[P]) bool {
	return cmp(iv.Start, iv.End) == 0
}

func (iv Interval[P]) String() string {
	return fmt.Sprintf("[%v,%v]", iv.Start, iv.End)
}

// Contains reports whether outer covers inner entirely.
func Contains[P any](outer, inner Interval[P], cmp Compare[P]) bool {
	return cmp(outer.Start, inner.Start) <= 0 && cmp(inner.End, outer.End) <= 0
}

// Overlaps reports whether a and b share at least one point.
func Overlaps[P any](a, b Interval[P], cmp Compare[P]) bool {
	return cmp(a.Start, b.End) <= 0 && cmp(b.Start, a.End) <= 0
}

// Sort orders intervals in place by Start, then by End.
func Sort[P any](ivs []Interval[P], cmp Compare[P]) {
	slices.SortFunc(ivs, func(a, b Interval[P]) int {
		if c := cmp(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp(a.End, b.End)
	})
}

// MergeAll returns the minimal ascending set of disjoint intervals covering
// the input. Intervals that overlap or touch at an endpoint are merged.
// The input slice is not modified.
func MergeAll[P any](ivs []Interval[P], cmp Compare[P]) []Interval[P] {
	if len(ivs) == 0 {
		return nil
	}
	sorted := slices.Clone(ivs)
	Sort(sorted, cmp)

	out := make([]Interval[P], 0, len(sorted))
	cur := sorted[0]
	for _, iv := range sorted[1:] {
		if cmp(iv.Start, cur.End) <= 0 {
			if cmp(iv.End, cur.End) > 0 {
				cur.End = iv.End
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	return append(out, cur)
}
