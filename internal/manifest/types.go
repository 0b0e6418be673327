package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// FileName is the manifest file every package directory carries.
const FileName = "package.json"

// Package is the subset of package.json the linker reads.
type Package struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version,omitempty"`
	Description          string            `json:"description,omitempty"`
	Bin                  Bin               `json:"bin,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
}

// Bin maps executable names to package-relative script paths.
//
// package.json allows either a string (one executable named after the
// package) or an object. A string form is recorded under the empty key
// until Normalize assigns it the package's unscoped name.
type Bin map[string]string

// UnmarshalJSON accepts both the string and object form of "bin".
func (b *Bin) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*b = Bin{"": single}
		return nil
	}

	var many map[string]string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("bin must be a string or an object of strings: %w", err)
	}
	*b = many
	return nil
}

// Executables returns the package's bin entries sorted by executable name,
// with the string form resolved to the unscoped package name and script
// paths cleaned. Entries whose name or path would escape their directory
// are dropped.
func (p *Package) Executables() []Executable {
	var result []Executable
	for name, script := range p.Bin {
		if name == "" {
			name = UnscopedName(p.Name)
		}
		name = path.Base(name)
		script = path.Clean(strings.ReplaceAll(script, "\\", "/"))
		if name == "." || name == ".." || name == "/" || script == "." || strings.HasPrefix(script, "../") || path.IsAbs(script) {
			continue
		}
		result = append(result, Executable{Name: name, Script: script})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Executable is one bin entry of a package.
type Executable struct {
	Name   string // command name, e.g. "eslint"
	Script string // slash-separated path relative to the package root
}

// UnscopedName strips a leading "@scope/" from a package name.
func UnscopedName(name string) string {
	if strings.HasPrefix(name, "@") {
		if _, rest, ok := strings.Cut(name, "/"); ok {
			return rest
		}
	}
	return name
}

// PkgID returns "name@version", or just the name when no version is set.
func (p *Package) PkgID() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}
