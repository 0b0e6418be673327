// Package store reads the global package store: which packages it holds,
// whether an entry satisfies a requested version, and the entry names
// offered for shell completion. It never mutates the store.
package store
