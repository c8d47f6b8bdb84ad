// Package filesystem provides the filesystem abstraction used by the
// installer and the status checker.
//
// Only the operations dotlink needs are exposed. The OS implementation is
// the one used at runtime; tests swap in mocks to simulate failures that
// are hard to provoke on a real disk.
package filesystem
