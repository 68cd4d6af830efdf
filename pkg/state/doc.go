// Package state persists component definition sets and loads them into a
// runtime.
//
// Store[T] only loads and saves a single snapshot for a single Ref. Loader
// reads one or more definition sets from a store and defines them on a root
// constructor in order, so a later set may extend components registered by
// an earlier one. Mutate applies a change to a stored set, validates the
// result and saves it, guarded by an optimistic ETag check.
//
// Data flow:
//
//	Store -> Loader -> Runtime.Define(root, set.Components...) -> constructors
package state
