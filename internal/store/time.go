package store

import "time"

func defaultNow() time.Time { return time.Now() }

// nowISO renders the current instant as the ISO-8601 string used for
// created_at/delivered_at/pushed_at columns.
func nowISO() string {
	return nowFunc().UTC().Format(time.RFC3339Nano)
}
