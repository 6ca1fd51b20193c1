package orchestrator

// sequencer releases results in reservation order even when they complete
// out of order
type sequencer struct {
	next    uint64
	issued  uint64
	pending map[uint64]chunkResult
}

func newSequencer() *sequencer {
	return &sequencer{pending: make(map[uint64]chunkResult)}
}

// reserve hands out the next slot
func (s *sequencer) reserve() uint64 {
	n := s.issued
	s.issued++
	return n
}

// complete stores the result for slot n and returns every result that is
// now releasable, in order
func (s *sequencer) complete(n uint64, res chunkResult) []chunkResult {
	if n < s.next {
		return nil
	}
	s.pending[n] = res

	var ready []chunkResult
	for {
		r, ok := s.pending[s.next]
		if !ok {
			return ready
		}
		delete(s.pending, s.next)
		ready = append(ready, r)
		s.next++
	}
}

// outstanding is the number of reserved slots not yet released
func (s *sequencer) outstanding() int {
	return int(s.issued - s.next)
}
