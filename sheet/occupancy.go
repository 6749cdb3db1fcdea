package sheet

import "sort"

// occupancy tracks, per occupied row or column index, how many cells
// currently live there — the Go rendering of spec.md §3's
// "SortedMap<int,int>" row_counts/col_counts, maintaining sorted keys
// alongside the counts so the printable extent (the largest occupied key)
// is available without a linear scan.
type occupancy struct {
	counts map[int]int
	keys   []int // ascending, kept in sync with counts
}

func newOccupancy() *occupancy {
	return &occupancy{counts: make(map[int]int)}
}

// inc records one more cell at index k.
func (o *occupancy) inc(k int) {
	if o.counts[k] == 0 {
		i := sort.SearchInts(o.keys, k)
		o.keys = append(o.keys, 0)
		copy(o.keys[i+1:], o.keys[i:])
		o.keys[i] = k
	}
	o.counts[k]++
}

// dec records one fewer cell at index k, dropping the key entirely once its
// count reaches zero (spec.md §3 invariant (5): "a zero count implies
// absence of the key").
func (o *occupancy) dec(k int) {
	o.counts[k]--
	if o.counts[k] > 0 {
		return
	}
	delete(o.counts, k)
	i := sort.SearchInts(o.keys, k)
	if i < len(o.keys) && o.keys[i] == k {
		o.keys = append(o.keys[:i], o.keys[i+1:]...)
	}
}

// max returns the largest occupied index, or ok=false if nothing is
// occupied.
func (o *occupancy) max() (k int, ok bool) {
	if len(o.keys) == 0 {
		return 0, false
	}
	return o.keys[len(o.keys)-1], true
}
