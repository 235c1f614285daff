// Package sqlxrepos implements the domain repositories on PostgreSQL with
// hand-written SQL through sqlx.
package sqlxrepos

import "strconv"

func itoa(n int) string { return strconv.Itoa(n) }
