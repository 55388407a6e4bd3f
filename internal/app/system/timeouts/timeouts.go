// Package timeouts provides centralized timeout values for handler and
// worker operations, used with context.WithTimeout.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries and single-transaction writes
//   - Long: multi-collection transactions and full recomputes
//   - Batch: backfill and other bulk jobs
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
	batch  = 5 * time.Minute
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and transactional writes.
// Matches the record store's own default transaction lifetime, so an
// engine operation never outlives its transaction.
func Medium() time.Duration { return medium }

// Long returns the timeout for full statistics recomputes.
func Long() time.Duration { return long }

// Batch returns the timeout for bulk jobs such as the stats backfill.
func Batch() time.Duration { return batch }
