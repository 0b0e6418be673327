package linker

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/pkglink/internal/tree"
)

// ErrGlobal is returned when linking is requested with the global flag set.
var ErrGlobal = errors.New("link should never be --global")

// Mode is the direction of one link invocation.
type Mode int

const (
	// ModeSelfToGlobal links the current project into the global store.
	ModeSelfToGlobal Mode = iota
	// ModeGlobalToLocal links global store entries into the project.
	ModeGlobalToLocal
)

func (m Mode) String() string {
	switch m {
	case ModeSelfToGlobal:
		return "self-to-global"
	case ModeGlobalToLocal:
		return "global-to-local"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeFor returns the mode implied by a specifier list.
func ModeFor(args []string) Mode {
	if len(args) == 0 {
		return ModeSelfToGlobal
	}
	return ModeGlobalToLocal
}

// Link is one symlink created by an invocation.
type Link struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Target string `json:"target"`
}

// Result lists the links an invocation committed, in creation order.
type Result struct {
	Mode  Mode
	Links []Link
}

// LinkError reports a filesystem failure while creating or checking a link.
type LinkError struct {
	Op   string
	Path string
	Err  error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// StoreLocator locates the global package store.
type StoreLocator interface {
	GlobalDir() string
}

// Reporter receives the tree affected by a completed invocation.
type Reporter interface {
	Report(t *tree.Tree) error
}
