package feed

// ObservedWindow returns the half-open index range [start, end) of cards that
// the play/pause and active-post observers watch: the most recent batchSize
// cards. Older cards fall out of observation as the feed grows.
func ObservedWindow(total, batchSize int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	if batchSize <= 0 || batchSize >= total {
		return 0, total
	}
	return total - batchSize, total
}

// PrefetchIndex returns the index of the card whose visibility triggers the
// next batch load, or -1 when the feed is shorter than the threshold.
func PrefetchIndex(total, threshold int) int {
	idx := total - threshold
	if idx < 0 || idx >= total {
		return -1
	}
	return idx
}

// inWindow reports whether i lies in [start, end).
func inWindow(i, start, end int) bool {
	return i >= start && i < end
}
