package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/pkglink/internal/manifest"
	"github.com/agentx-labs/pkglink/internal/spec"
)

// Store is a package store directory such as <globalPrefix>/lib/node_modules.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the store entry path for a package name. Scoped names
// resolve two levels deep.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(name))
}

// Has reports whether the store holds an entry for name. Directories and
// symlinks both count, including a symlink left by an earlier link whose
// target is no longer reachable.
func (s *Store) Has(name string) bool {
	info, err := os.Lstat(s.Path(name))
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode()&os.ModeSymlink != 0
}

// Package reads the manifest of the entry for name.
func (s *Store) Package(name string) (*manifest.Package, error) {
	return manifest.ReadDir(s.Path(name))
}

// Presence describes what the store holds for a requested identity.
type Presence struct {
	Present   bool   // an entry with the name exists
	Satisfies bool   // the entry can be linked as-is
	Version   string // version of the entry, when readable
	Reason    string // why the entry cannot be linked as-is
}

// Check decides whether id can be linked straight from the store.
//
// Only name references are ever satisfied by an existing entry; directory
// and remote sources are always installed so the store reflects the
// source. A name with a version range is satisfied when the entry's
// manifest version matches the range.
func (s *Store) Check(id spec.Identity) (Presence, error) {
	p := Presence{Present: s.Has(id.Name)}

	switch {
	case id.Kind != spec.KindName:
		p.Reason = "installing " + id.Kind.String() + " source"
		return p, nil
	case !p.Present:
		p.Reason = "not in global store"
		return p, nil
	}

	constraint, err := id.Constraint()
	if err != nil {
		return p, fmt.Errorf("parsing range for %s: %w", id.Name, err)
	}

	if pkg, err := s.Package(id.Name); err == nil {
		p.Version = pkg.Version
	}

	if constraint == nil {
		p.Satisfies = true
		return p, nil
	}

	if p.Version == "" {
		p.Reason = "global entry has no readable version"
		return p, nil
	}
	v, err := semver.NewVersion(p.Version)
	if err != nil {
		p.Reason = fmt.Sprintf("global entry version %q is not semver", p.Version)
		return p, nil
	}
	if !constraint.Check(v) {
		p.Reason = fmt.Sprintf("global version %s does not satisfy %s", p.Version, id.Range)
		return p, nil
	}

	p.Satisfies = true
	return p, nil
}

// Entries returns the sorted, deduplicated names of the store's immediate
// entries. Scope directories are listed as "@scope" without expanding
// their contents. Hidden entries such as .bin are skipped. A store that
// does not exist yet has no entries.
func (s *Store) Entries() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading global store %s: %w", s.Dir, err)
	}

	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
