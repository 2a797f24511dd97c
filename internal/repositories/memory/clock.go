package memory

import "time"

// now matches the microsecond precision of a timestamptz column.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
