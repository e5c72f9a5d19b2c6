package rangecache

import (
	"cmp"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

type pt struct {
	At  int
	Src string
}

var ptOrder = order[int, pt]{point: func(p pt) int { return p.At }, cmp: cmp.Compare[int]}

func pts(ats ...int) []pt {
	out := make([]pt, len(ats))
	for i, a := range ats {
		out[i] = pt{At: a}
	}
	return out
}

func TestFindExact(t *testing.T) {
	vals := pts(1, 3, 5, 7)
	cases := []struct {
		target int
		want   int
	}{
		{0, -1}, {1, 0}, {4, -1}, {5, 2}, {7, 3}, {8, -1},
	}
	for _, tc := range cases {
		if got := ptOrder.findExact(vals, tc.target); got != tc.want {
			t.Fatalf("findExact(%d)=%d want %d", tc.target, got, tc.want)
		}
	}
	if got := ptOrder.findExact(nil, 1); got != -1 {
		t.Fatalf("findExact on empty=%d", got)
	}
}

func TestFindInsertionIndex(t *testing.T) {
	vals := pts(1, 3, 5, 7)
	cases := []struct {
		target int
		want   int
	}{
		{0, 0}, {1, 0}, {2, 1}, {5, 2}, {6, 3}, {7, 3}, {100, 4},
	}
	for _, tc := range cases {
		if got := ptOrder.findInsertionIndex(vals, tc.target); got != tc.want {
			t.Fatalf("findInsertionIndex(%d)=%d want %d", tc.target, got, tc.want)
		}
	}
	if got := ptOrder.findInsertionIndex(nil, 3); got != 0 {
		t.Fatalf("findInsertionIndex on empty=%d", got)
	}
}

func TestSliceInclusiveBounds(t *testing.T) {
	vals := pts(1, 3, 5, 7, 9)
	cases := []struct {
		name       string
		start, end int
		want       []pt
	}{
		{"exact_bounds", 3, 7, pts(3, 5, 7)},
		{"between_points", 2, 8, pts(3, 5, 7)},
		{"single_point", 5, 5, pts(5)},
		{"empty_gap", 6, 6, pts()},
		{"before_all", -5, 0, pts()},
		{"after_all", 10, 20, pts()},
		{"everything", 0, 100, pts(1, 3, 5, 7, 9)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ptOrder.slice(vals, tc.start, tc.end)
			if diff := gocmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("slice(%d,%d) (-want +got):\n%s", tc.start, tc.end, diff)
			}
		})
	}
}

func TestSliceDoesNotAliasSource(t *testing.T) {
	vals := pts(1, 2, 3)
	got := ptOrder.slice(vals, 1, 2)
	got[0].Src = "changed"
	if vals[0].Src != "" {
		t.Fatalf("slice aliases the source")
	}
}

func TestInsertDropsSharedBoundaries(t *testing.T) {
	vals := pts(1, 2)
	batch := []pt{{At: 2, Src: "second"}, {At: 3, Src: "second"}}
	got := ptOrder.insert(vals, batch)
	want := []pt{{At: 1}, {At: 2}, {At: 3, Src: "second"}}
	if diff := gocmp.Diff(want, got); diff != "" {
		t.Fatalf("insert (-want +got):\n%s", diff)
	}
}

func TestInsertIntoGapAndBeforeAfter(t *testing.T) {
	got := ptOrder.insert(pts(0, 10), pts(4, 5, 6))
	if diff := gocmp.Diff(pts(0, 4, 5, 6, 10), got); diff != "" {
		t.Fatalf("gap insert (-want +got):\n%s", diff)
	}
	got = ptOrder.insert(pts(5, 6), pts(1, 2))
	if diff := gocmp.Diff(pts(1, 2, 5, 6), got); diff != "" {
		t.Fatalf("prepend (-want +got):\n%s", diff)
	}
	got = ptOrder.insert(nil, pts(3, 1, 2))
	if diff := gocmp.Diff(pts(1, 2, 3), got); diff != "" {
		t.Fatalf("unsorted batch into empty (-want +got):\n%s", diff)
	}
}

func TestInsertInterleavedFallsBackToMerge(t *testing.T) {
	got := ptOrder.insert(pts(2, 4, 6), pts(1, 3, 4, 5, 7))
	if diff := gocmp.Diff(pts(1, 2, 3, 4, 5, 6, 7), got); diff != "" {
		t.Fatalf("merge (-want +got):\n%s", diff)
	}
}
