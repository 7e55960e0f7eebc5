package duckvec

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Version is a parsed engine version.
type Version struct {
	Major int
	Minor int
	Patch int
	Raw   string
}

// String returns the raw engine version when available, otherwise the
// parsed triple.
func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether the version is at least major.minor.patch.
func (v Version) AtLeast(major, minor, patch int) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// versionTriple is the pointer-free slice of Version cached in an
// AtomicCell; the raw string is published separately.
type versionTriple struct {
	major int32
	minor int32
	patch int32
}

var (
	engineVersionCell = NewAtomicCell[versionTriple]()
	engineVersionRaw  atomic.Pointer[string]
)

// EngineVersion returns the loaded engine's version. The version is read
// from the library once and cached; concurrent first calls are safe.
func EngineVersion() (Version, error) {
	if raw := engineVersionRaw.Load(); raw != nil {
		t := engineVersionCell.Load()
		return Version{
			Major: int(t.major), Minor: int(t.minor), Patch: int(t.patch),
			Raw: *raw,
		}, nil
	}

	if err := requireLibrary(); err != nil {
		return Version{}, err
	}
	raw := lib.version()
	v := parseVersion(raw)
	engineVersionCell.Store(versionTriple{
		major: int32(v.Major), minor: int32(v.Minor), patch: int32(v.Patch),
	})
	engineVersionRaw.Store(&raw)
	return v, nil
}

// parseVersion extracts the numeric triple from an engine version string
// such as "v1.2.1" or "v0.8.0-1014-gf41c0e9a4e". Unparseable strings keep
// a zero triple with the raw text intact.
func parseVersion(raw string) Version {
	v := Version{Raw: raw}
	s := strings.TrimPrefix(raw, "v")
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	fmt.Sscanf(s, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch)
	return v
}
