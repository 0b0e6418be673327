// Package manifest reads and validates package.json manifests. Only the
// fields the linker needs are decoded: name, version, bin and the
// dependency maps. Validation runs against an embedded JSON schema.
package manifest
