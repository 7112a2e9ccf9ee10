package memoize

// stats counts lookup outcomes. It relies on the owner's guard.
type stats struct {
	hits   uint64
	misses uint64
}

func (s *stats) hit()  { s.hits++ }
func (s *stats) miss() { s.misses++ }

func (s *stats) reset() {
	s.hits, s.misses = 0, 0
}
