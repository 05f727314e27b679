// Package store provides SQLite-backed storage for check runs.
//
// The store keeps three tables:
//   - runs: one row per executed plan, with its seed and trajectory bounds
//   - check_results: one row per (run, task, check)
//   - fingerprints: the trajectory fingerprint of each conformance check
//
// Runs are ordered by an autoincrement seq, never by wall time, so the
// "latest" run is well defined even when runs are written within the same
// clock tick. Every query orders by seq and then by a binary-collated key.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
