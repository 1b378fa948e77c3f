package memstore

import "time"

func testTime() time.Time {
	return time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
}
