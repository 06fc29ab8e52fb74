// Package merge implements the inherit-defaults, override-per-entry policy
// used by query catalogs: a pure deep merge over generic key-value trees.
//
// For each key present in both inputs, two mappings recurse and anything
// else is taken from the overlay. Keys present in only one input are kept.
// Neither input is mutated, so merged results can be published to concurrent
// readers without copying, and merging an already-merged result with the
// same defaults is a no-op.
package merge
