package rangecache

import (
	"slices"

	"github.com/unkn0wn-root/rangecache/interval"
)

// order locates values in a slice kept ascending by projected point.
type order[P, V any] struct {
	point func(V) P
	cmp   interval.Compare[P]
}

func (o order[P, V]) compareValues(a, b V) int {
	return o.cmp(o.point(a), o.point(b))
}

func (o order[P, V]) search(values []V, target P) (int, bool) {
	return slices.BinarySearchFunc(values, target, func(v V, t P) int {
		return o.cmp(o.point(v), t)
	})
}

// findExact returns the index of the value whose point equals target, or -1.
func (o order[P, V]) findExact(values []V, target P) int {
	if i, ok := o.search(values, target); ok {
		return i
	}
	return -1
}

// findInsertionIndex returns the first index whose point is >= target, or len(values).
func (o order[P, V]) findInsertionIndex(values []V, target P) int {
	i, _ := o.search(values, target)
	return i
}

// upperBound returns the first index whose point is > target, or len(values).
func (o order[P, V]) upperBound(values []V, target P) int {
	lo, hi := 0, len(values)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if o.cmp(o.point(values[mid]), target) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// slice copies the values with point in [start,end].
func (o order[P, V]) slice(values []V, start, end P) []V {
	lo := o.findInsertionIndex(values, start)
	hi := o.upperBound(values, end)
	if lo >= hi {
		return []V{}
	}
	return slices.Clone(values[lo:hi])
}

// insert adds a loaded batch to values. A first or last batch value whose
// point is already present is dropped; these are the shared endpoints of
// adjacent closed loads. A batch that fits between two existing neighbours is
// inserted in one step, anything else falls back to a deduplicating merge.
func (o order[P, V]) insert(values, batch []V) []V {
	if len(batch) == 0 {
		return values
	}
	if !slices.IsSortedFunc(batch, o.compareValues) {
		batch = slices.Clone(batch)
		slices.SortStableFunc(batch, o.compareValues)
	}
	if o.findExact(values, o.point(batch[0])) >= 0 {
		batch = batch[1:]
	}
	if n := len(batch); n > 0 && o.findExact(values, o.point(batch[n-1])) >= 0 {
		batch = batch[:n-1]
	}
	if len(batch) == 0 {
		return values
	}

	lo := o.findInsertionIndex(values, o.point(batch[0]))
	hi := o.findInsertionIndex(values, o.point(batch[len(batch)-1]))
	if lo == hi {
		return slices.Insert(values, lo, batch...)
	}
	return o.mergeUnique(values, batch)
}

// mergeUnique merges two ascending slices; on equal points the existing value wins.
func (o order[P, V]) mergeUnique(values, batch []V) []V {
	out := make([]V, 0, len(values)+len(batch))
	i, j := 0, 0
	for i < len(values) && j < len(batch) {
		switch c := o.compareValues(values[i], batch[j]); {
		case c < 0:
			out = append(out, values[i])
			i++
		case c > 0:
			if n := len(out); n == 0 || o.compareValues(out[n-1], batch[j]) != 0 {
				out = append(out, batch[j])
			}
			j++
		default:
			j++
		}
	}
	out = append(out, values[i:]...)
	for ; j < len(batch); j++ {
		if n := len(out); n == 0 || o.compareValues(out[n-1], batch[j]) != 0 {
			out = append(out, batch[j])
		}
	}
	return out
}
