package bot

// SeenSet is the per-session dedup ledger for message ids. The platform's
// list API is not a strict queue, so overlapping batches are expected; each
// id is dispatched at most once per session. The whole set is discarded at
// session end, which bounds memory to one session's worth of ids.
//
// It is only touched by the supervisor goroutine and needs no locking.
type SeenSet struct {
	ids map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Seen reports whether the id was already marked this session.
func (s *SeenSet) Seen(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Mark records the id as handled.
func (s *SeenSet) Mark(id string) {
	s.ids[id] = struct{}{}
}

// Len returns the number of distinct ids handled this session.
func (s *SeenSet) Len() int { return len(s.ids) }
