package memory

import (
	"time"
)

// stampFormat is fixed-width (nanosecond precision, UTC) so lexicographic
// comparison of two stamps always matches chronological order. RFC3339Nano
// would trim trailing zeros and break that property.
const stampFormat = "2006-01-02T15:04:05.000000000Z"

// stampSource issues strictly increasing timestamp strings. It carries no
// lock of its own; the owning store's mutex guards it.
type stampSource struct {
	last string
}

// next returns a stamp strictly greater than every stamp issued before it.
// If the wall clock has not advanced past the previous stamp, the previous
// stamp is bumped by one nanosecond instead.
func (s *stampSource) next() string {
	stamp := time.Now().UTC().Format(stampFormat)
	if stamp <= s.last {
		prev, err := time.Parse(stampFormat, s.last)
		if err != nil {
			prev = time.Now().UTC()
		}
		stamp = prev.Add(time.Nanosecond).UTC().Format(stampFormat)
	}
	s.last = stamp
	return stamp
}
