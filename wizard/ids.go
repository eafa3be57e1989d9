package wizard

import (
	"strconv"
	"sync/atomic"
	"time"
)

// IDSequence issues request ids from the submission time in milliseconds,
// bumped past the last issued one so that drafts submitted within the same
// millisecond still get distinct ids.
type IDSequence struct {
	last atomic.Int64
}

var requestIDs IDSequence

func (s *IDSequence) Next(now time.Time) string {
	for {
		last := s.last.Load()
		id := now.UnixMilli()
		if id <= last {
			id = last + 1
		}
		if s.last.CompareAndSwap(last, id) {
			return strconv.FormatInt(id, 10)
		}
	}
}
