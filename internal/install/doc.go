// Package install materializes packages into the global store. It is the
// installer half of a link: directory sources are linked (or copied) into
// the store directly, name and remote sources are handed to the npm
// executable.
package install
