// Package tree loads the actual package tree found on disk under a
// directory's node_modules. Symlinked entries become link nodes whose
// Target is the node at the fully resolved path.
package tree
