// Package spec classifies the package specifiers given to the link command.
//
// A specifier is one of:
//   - a bare or scoped package name, optionally with a version range or
//     dist-tag ("a", "@scope/name", "a@^1.2.0", "a@latest")
//   - a directory ("file:../dir", "./dir", "/abs/dir", "~/dir")
//   - a remote source ("https://host/pkg.tgz", "github:user/repo",
//     "git+ssh://...", optionally aliased as "name@<source>")
//
// Every accepted specifier yields an Identity with a non-empty, path-safe
// package name.
package spec
