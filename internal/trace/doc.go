// Package trace provides the canonical encoding of trajectories.
//
// A trajectory is encoded as canonical JSON: object keys sorted by UTF-16
// code units, strings NFC normalized, no HTML escaping, and floats written
// in their shortest round-trip form. Two trajectories have the same
// encoding if and only if every step type, reward, discount and observation
// element is bit-identical, so the encoding doubles as the input of golden
// snapshots and of the SHA-256 fingerprints stored for regression checks.
package trace
