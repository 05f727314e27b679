// Package env defines the value types and collaborator interfaces shared by
// the suite, the policies and the conformance harness.
//
// An Environment produces TimeStep snapshots. Observations and observation
// specs are ordered key/value structures whose key set is fixed and
// validated when they are built; the harness never mutates simulator state,
// it only reads the TimeStep values it is handed.
//
// This package imports nothing internal. Every other internal package
// imports env.
package env
