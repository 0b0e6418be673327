package spec

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind is the resolution intent of a specifier.
type Kind int

const (
	// KindName refers to a package by name, expected in the global store.
	KindName Kind = iota
	// KindDirectory refers to a package directory on the local filesystem.
	KindDirectory
	// KindRemote refers to a tarball URL or git repository.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindDirectory:
		return "directory"
	case KindRemote:
		return "remote"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Identity is a classified specifier.
type Identity struct {
	Raw   string // the token as given
	Name  string // "name" or "@scope/name"
	Kind  Kind
	Range string // semver range for KindName, empty when any version will do
	Tag   string // dist-tag for KindName, e.g. "latest"
	Path  string // absolute directory for KindDirectory, source for KindRemote

	// Aliased is set for remote sources named explicitly as name@<source>.
	Aliased bool
}

// Scope returns "@scope" for scoped names and "" otherwise.
func (id Identity) Scope() string {
	if !strings.HasPrefix(id.Name, "@") {
		return ""
	}
	scope, _, _ := strings.Cut(id.Name, "/")
	return scope
}

// Constraint returns the parsed version range, or nil when the identity
// accepts any version.
func (id Identity) Constraint() (*semver.Constraints, error) {
	if id.Range == "" {
		return nil, nil
	}
	return semver.NewConstraint(id.Range)
}

// InstallSpec returns the argument an installer should be given to
// materialize this identity.
func (id Identity) InstallSpec() string {
	switch id.Kind {
	case KindDirectory:
		return id.Path
	case KindRemote:
		if id.Aliased {
			return id.Name + "@" + id.Path
		}
		return id.Path
	}
	switch {
	case id.Range != "":
		return id.Name + "@" + id.Range
	case id.Tag != "":
		return id.Name + "@" + id.Tag
	default:
		return id.Name
	}
}

// Error reports a specifier that cannot be classified.
type Error struct {
	Token  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid package specifier %q: %s: %v", e.Token, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid package specifier %q: %s", e.Token, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }
