// Package runctx provides the per-run key-value context that tasks use to hand
// values to their downstream tasks.
//
// A Context is created fresh for every run and is never shared across runs.
// Every key is write-once: the first Push wins and any later Push for the same
// key fails with ErrDuplicateKey. Pull fails with ErrMissingKey until the key
// has been written. There is no deletion.
//
// Tasks normally do not use raw string keys. They declare a Slot, which binds
// a key name to a value type, and graph construction checks that every slot a
// task consumes is produced by one of its upstream tasks.
package runctx
