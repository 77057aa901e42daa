package quote

// resolveCappedIndex maps a 0-based logical index (within [0, trueCount)) to
// its physical position in a slice that was cap-truncated to the first+last
// keep entries. ok=false means the index fell in the elided middle.
func resolveCappedIndex(i, trueCount int, capped bool, keep int) (physical int, ok bool) {
	if !capped {
		return i, true
	}
	if i < keep {
		return i, true
	}
	if i >= trueCount-keep {
		return keep + (i - (trueCount - keep)), true
	}
	return 0, false
}
