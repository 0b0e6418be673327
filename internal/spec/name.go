package spec

import (
	"errors"
	"fmt"
	"strings"
)

const maxNameLength = 214

// ValidateName checks that name is a legal package name and addresses
// exactly one entry of a package store: "name" or "@scope/name", lowercase,
// with no path separators or traversal segments.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("package name is empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("package name longer than %d characters", maxNameLength)
	}

	if strings.HasPrefix(name, "@") {
		scope, pkg, ok := strings.Cut(name[1:], "/")
		if !ok {
			return fmt.Errorf("scoped name %q must be of the form @scope/name", name)
		}
		if err := validateSegment(scope); err != nil {
			return fmt.Errorf("scope of %q: %w", name, err)
		}
		if err := validateSegment(pkg); err != nil {
			return fmt.Errorf("name of %q: %w", name, err)
		}
		return nil
	}

	return validateSegment(name)
}

func validateSegment(s string) error {
	if s == "" {
		return errors.New("empty name segment")
	}
	if s[0] == '.' || s[0] == '_' {
		return fmt.Errorf("%q may not start with %q", s, s[0])
	}
	if s == "node_modules" {
		return errors.New("node_modules is a reserved name")
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r == '-', r == '.', r == '_', r == '~':
		default:
			return fmt.Errorf("%q contains invalid character %q", s, r)
		}
	}
	return nil
}
