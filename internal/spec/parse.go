package spec

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/pkglink/internal/manifest"
)

var (
	// distTag matches dist-tags such as "latest" or "next".
	distTag = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)
	// windowsAbs matches drive-letter paths such as C:\dir or C:/dir.
	windowsAbs = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
)

// remotePrefixes are the shorthand and protocol prefixes of remote sources.
var remotePrefixes = []string{"git+", "git@", "github:", "gitlab:", "bitbucket:", "gist:"}

// ParseAll classifies every raw specifier in order. Relative directory
// specifiers are resolved against baseDir. The first failure aborts.
func ParseAll(raws []string, baseDir string) ([]Identity, error) {
	ids := make([]Identity, 0, len(raws))
	for _, raw := range raws {
		id, err := Parse(raw, baseDir)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Parse classifies a single specifier.
func Parse(raw, baseDir string) (Identity, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return Identity{}, &Error{Token: raw, Reason: "empty specifier"}
	}

	if isDirectory(token) {
		return parseDirectory(raw, token, baseDir)
	}

	if name, source, ok := splitAlias(token); ok {
		return parseRemote(raw, name, source)
	}
	if isRemote(token) {
		return parseRemote(raw, "", token)
	}

	return parseName(raw, token)
}

// isDirectory reports whether token names a local directory.
func isDirectory(token string) bool {
	if strings.HasPrefix(token, "file:") {
		return true
	}
	if token == "." || token == ".." || token == "~" {
		return true
	}
	for _, p := range []string{"./", "../", "/", "~/", ".\\", "..\\"} {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return windowsAbs.MatchString(token)
}

// isRemote reports whether token looks like a tarball URL or git source.
func isRemote(token string) bool {
	if strings.Contains(token, "://") {
		return true
	}
	for _, p := range remotePrefixes {
		if strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

// splitAlias splits "name@<remote>" into its name and source.
func splitAlias(token string) (name, source string, ok bool) {
	name, rest := splitNameVersion(token)
	if rest == "" || !isRemote(rest) {
		return "", "", false
	}
	return name, rest, true
}

// splitNameVersion splits "name@x" or "@scope/name@x" at the version separator.
func splitNameVersion(token string) (name, version string) {
	if strings.HasPrefix(token, "@") {
		if idx := strings.Index(token[1:], "@"); idx >= 0 {
			return token[:idx+1], token[idx+2:]
		}
		return token, ""
	}
	if before, after, found := strings.Cut(token, "@"); found {
		return before, after
	}
	return token, ""
}

func parseName(raw, token string) (Identity, error) {
	name, version := splitNameVersion(token)
	if err := ValidateName(name); err != nil {
		return Identity{}, &Error{Token: raw, Reason: "invalid package name", Err: err}
	}

	id := Identity{Raw: raw, Name: name, Kind: KindName}
	switch {
	case version == "", version == "*":
	case distTag.MatchString(version) && !looksNumeric(version):
		id.Tag = version
	default:
		if _, err := semver.NewConstraint(version); err != nil {
			return Identity{}, &Error{Token: raw, Reason: "invalid version range", Err: err}
		}
		id.Range = version
	}
	return id, nil
}

// looksNumeric reports whether a version token starts like a version
// ("v1", "1.x") rather than a tag.
func looksNumeric(s string) bool {
	s = strings.TrimPrefix(s, "v")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func parseDirectory(raw, token, baseDir string) (Identity, error) {
	p := strings.TrimPrefix(token, "file:")
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Identity{}, &Error{Token: raw, Reason: "resolving home directory", Err: err}
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	p = filepath.Clean(p)

	info, err := os.Stat(p)
	if err != nil {
		return Identity{}, &Error{Token: raw, Reason: "directory not found", Err: err}
	}
	if !info.IsDir() {
		return Identity{}, &Error{Token: raw, Reason: p + " is not a directory"}
	}

	pkg, err := manifest.ReadDir(p)
	if err != nil {
		return Identity{}, &Error{Token: raw, Reason: "reading package manifest", Err: err}
	}

	return Identity{Raw: raw, Name: pkg.Name, Kind: KindDirectory, Path: p}, nil
}

func parseRemote(raw, name, source string) (Identity, error) {
	aliased := name != ""
	if !aliased {
		name = nameFromSource(source)
	}
	if err := ValidateName(name); err != nil {
		return Identity{}, &Error{
			Token:  raw,
			Reason: "cannot determine package name from source, use <name>@<source>",
			Err:    err,
		}
	}
	return Identity{Raw: raw, Name: name, Kind: KindRemote, Path: source, Aliased: aliased}, nil
}

// nameFromSource guesses a package name from a remote source: the last
// path segment without the git or tarball extension, the "#ref" fragment,
// or a trailing "-<version>".
func nameFromSource(source string) string {
	s, _, _ := strings.Cut(source, "#")
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	s = path.Base(s)
	for _, ext := range []string{".git", ".tgz", ".tar.gz"} {
		s = strings.TrimSuffix(s, ext)
	}
	if i := strings.LastIndex(s, "-"); i > 0 {
		if _, err := semver.StrictNewVersion(s[i+1:]); err == nil {
			s = s[:i]
		}
	}
	return strings.ToLower(s)
}
