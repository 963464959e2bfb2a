// Package poller runs named jobs on fixed intervals.
//
// The Supervisor:
//   - Runs every job once on Start, then on its own ticker
//   - Never overlaps a job with itself, including manual Trigger calls
//   - Logs a failed run and waits for the next tick; there are no retries
//   - Bounds each run with the job's timeout
package poller
