// Package linker implements the link command: it places the current
// project into the global package store, or links packages from the
// global store into the project's node_modules, installing them into the
// store first when needed.
package linker
