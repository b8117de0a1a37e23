package plant

import "github.com/andrescamacho/jobshop-sim/internal/domain/catalog"

// CountTypes builds a fresh part-type histogram of a buffer
func CountTypes(parts []Part) map[catalog.PartTypeID]int {
	counts := make(map[catalog.PartTypeID]int, len(parts))
	for _, p := range parts {
		counts[p.Type]++
	}
	return counts
}

// Covers reports whether the buffer holds at least the required count of every
// distinct input type of the transformation
func Covers(parts []Part, t *catalog.Transformation) bool {
	return CoversCounts(CountTypes(parts), t)
}

// CoversCounts is Covers over a histogram already built with CountTypes
func CoversCounts(counts map[catalog.PartTypeID]int, t *catalog.Transformation) bool {
	for _, req := range t.Requirements() {
		if counts[req.PartType] < req.Count {
			return false
		}
	}
	return true
}

// takeMatching splits a buffer into the parts a transformation consumes and the
// rest. Matching is first-encountered in buffer order and the remainder keeps its
// relative order. ok is false, with the buffer untouched, when the buffer cannot
// cover the requirements.
func takeMatching(parts []Part, t *catalog.Transformation) (taken, remaining []Part, ok bool) {
	if !Covers(parts, t) {
		return nil, parts, false
	}

	needed := make(map[catalog.PartTypeID]int, len(t.Requirements()))
	for _, req := range t.Requirements() {
		needed[req.PartType] = req.Count
	}

	taken = make([]Part, 0, len(t.Inputs))
	remaining = make([]Part, 0, len(parts))
	for _, p := range parts {
		if needed[p.Type] > 0 {
			taken = append(taken, p)
			needed[p.Type]--
			continue
		}
		remaining = append(remaining, p)
	}

	if len(taken) != len(t.Inputs) {
		panic(&ErrInconsistentBuffer{Detail: "matched part count differs from transformation inputs"})
	}
	return taken, remaining, true
}
