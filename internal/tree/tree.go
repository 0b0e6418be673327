package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/pkglink/internal/manifest"
)

// Node is one package location in a loaded tree.
type Node struct {
	Name     string // package name as addressed in its parent's node_modules
	Version  string // version from package.json, empty when unreadable
	Path     string // location of the node in the tree
	RealPath string // Path with all symlinks resolved, empty for dangling links
	IsLink   bool   // the node's Path is a symlink
	Target   *Node  // for links, the node at RealPath
}

// PkgID returns "name@version", or just the name when no version is known.
func (n *Node) PkgID() string {
	if n.Version == "" {
		return n.Name
	}
	return n.Name + "@" + n.Version
}

// Tree is the result of loading a directory.
type Tree struct {
	Root *Node
	// Inventory holds every node, including the root and the targets of
	// links, in discovery order.
	Inventory []*Node

	byPath map[string]*Node
}

// Get returns the node at path, or nil.
func (t *Tree) Get(path string) *Node {
	return t.byPath[filepath.Clean(path)]
}

// Links returns the link nodes of the inventory in discovery order.
func (t *Tree) Links() []*Node {
	var links []*Node
	for _, n := range t.Inventory {
		if n.IsLink {
			links = append(links, n)
		}
	}
	return links
}

// Loader loads the actual tree rooted at a directory.
type Loader interface {
	Load(dir string) (*Tree, error)
}

// FSLoader reads trees from the local filesystem.
type FSLoader struct{}

// Load walks dir/node_modules, including scope directories and nested
// node_modules of real directories. Link targets are added to the
// inventory but not descended into.
func (FSLoader) Load(dir string) (*Tree, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving tree root: %w", err)
	}
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("loading tree at %s: %w", dir, err)
	}

	l := &loader{
		tree:   &Tree{byPath: make(map[string]*Node)},
		byReal: make(map[string]*Node),
	}
	root := l.newNode("", dir, real)
	l.tree.Root = root
	l.add(root)
	l.byReal[real] = root

	if err := l.walk(dir); err != nil {
		return nil, err
	}
	return l.tree, nil
}

type loader struct {
	tree   *Tree
	byReal map[string]*Node
}

func (l *loader) add(n *Node) {
	l.tree.Inventory = append(l.tree.Inventory, n)
	l.tree.byPath[n.Path] = n
}

// newNode builds a node, taking the version from the package.json at path
// when there is one. An empty name is filled from the manifest, then from
// the directory name.
func (l *loader) newNode(name, path, real string) *Node {
	n := &Node{Name: name, Path: path, RealPath: real}
	if pkg, err := manifest.ReadDir(path); err == nil {
		n.Version = pkg.Version
		if n.Name == "" {
			n.Name = pkg.Name
		}
	}
	if n.Name == "" {
		n.Name = filepath.Base(path)
	}
	return n
}

// walk adds the children found in parent/node_modules.
func (l *loader) walk(parent string) error {
	nm := filepath.Join(parent, "node_modules")
	entries, err := os.ReadDir(nm)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", nm, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasPrefix(name, "@") {
			if err := l.entry(name, filepath.Join(nm, name)); err != nil {
				return err
			}
			continue
		}

		scoped, err := os.ReadDir(filepath.Join(nm, name))
		if err != nil {
			// A stray @file rather than a scope directory.
			continue
		}
		for _, child := range scoped {
			if strings.HasPrefix(child.Name(), ".") {
				continue
			}
			if err := l.entry(name+"/"+child.Name(), filepath.Join(nm, name, child.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// entry adds the node for one node_modules entry.
func (l *loader) entry(name, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		link := &Node{Name: name, Path: path, IsLink: true}
		l.add(link)

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			// Dangling link: keep the node, leave it without a target.
			return nil
		}
		link.RealPath = real

		target, ok := l.byReal[real]
		if !ok {
			target = l.newNode("", real, real)
			l.add(target)
			l.byReal[real] = target
		}
		link.Target = target
		link.Version = target.Version
		return nil
	}

	if !info.IsDir() {
		return nil
	}

	real := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		real = resolved
	}
	if n, ok := l.byReal[real]; ok {
		// Already added as the target of a link walked earlier.
		l.tree.byPath[path] = n
		return l.walk(path)
	}
	n := l.newNode(name, path, real)
	l.add(n)
	l.byReal[real] = n
	return l.walk(path)
}
