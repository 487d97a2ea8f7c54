// Package ledger records pipeline runs and their per-item outcomes in a
// SQLite database so `storyreel history` can report on past runs.
//
// Writes are wrapped in a short busy-retry loop; concurrent runs against
// different output directories may share one ledger.
package ledger
