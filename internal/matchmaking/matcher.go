package matchmaking

// FIFO returns the earliest-inserted candidate, or nil when the queue
// is empty.
func FIFO(candidates []*PeerRecord) *PeerRecord {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}

// BestOverlap scans the candidates once and returns the one sharing
// the most filter tags with filters, together with the shared tags.
// Only a strictly larger overlap replaces the current best, so on a
// tie the earlier-inserted candidate wins. A candidate with zero
// shared tags is still a valid winner when nothing overlaps; callers
// that want to require overlap must filter the result themselves.
// The shared slice is never nil, so it serializes as [] rather than
// null when a filtered pair has no tags in common.
func BestOverlap(filters map[string]struct{}, candidates []*PeerRecord) (*PeerRecord, []string) {
	var best *PeerRecord
	bestShared := []string{}

	for _, cand := range candidates {
		shared := intersect(filters, cand.Filters)
		if best == nil || len(shared) > len(bestShared) {
			best = cand
			bestShared = shared
		}
	}
	return best, bestShared
}

func intersect(a, b map[string]struct{}) []string {
	shared := []string{}
	for tag := range a {
		if _, ok := b[tag]; ok {
			shared = append(shared, tag)
		}
	}
	return shared
}
