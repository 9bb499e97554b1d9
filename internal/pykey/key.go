// Package pykey defines the installation key: the typed identity of a
// managed interpreter distribution (implementation, version, platform,
// variant), its canonical string form, parsing, and ordering.
package pykey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// Implementation identifies a Python implementation. Known implementations
// are a closed set; ImplementationUnknown carries the raw token for any
// other value so the key can still round-trip through its string form.
type Implementation struct {
	known Knownimpl
	raw   string // set only when known == implUnknown
}

// Knownimpl is the closed tag for recognized implementations.
type Knownimpl int

const (
	ImplCPython Knownimpl = iota
	ImplPyPy
	ImplGraalPy
	implUnknown
)

func (k Knownimpl) String() string {
	switch k {
	case ImplCPython:
		return "cpython"
	case ImplPyPy:
		return "pypy"
	case ImplGraalPy:
		return "graalpy"
	default:
		return ""
	}
}

// NewImplementation returns the Implementation for a known tag.
func NewImplementation(k Knownimpl) Implementation {
	return Implementation{known: k}
}

// ParseImplementation parses the lowercase token used in key strings,
// recognized implementations mapping to their tag, anything else becoming
// an "unknown" variant that preserves the raw text.
func ParseImplementation(s string) Implementation {
	switch strings.ToLower(s) {
	case "cpython":
		return Implementation{known: ImplCPython}
	case "pypy":
		return Implementation{known: ImplPyPy}
	case "graalpy":
		return Implementation{known: ImplGraalPy}
	default:
		return Implementation{known: implUnknown, raw: s}
	}
}

// IsKnown reports whether the implementation is one of the recognized tags.
func (i Implementation) IsKnown() bool { return i.known != implUnknown }

// Known returns the recognized tag. Only meaningful when IsKnown is true.
func (i Implementation) Known() Knownimpl { return i.known }

func (i Implementation) String() string {
	if i.known == implUnknown {
		return i.raw
	}
	return i.known.String()
}

// PrereleaseKind is the closed set of prerelease tags.
type PrereleaseKind int

const (
	PrereleaseNone PrereleaseKind = iota
	PrereleaseAlpha
	PrereleaseBeta
	PrereleaseRC
)

// Prerelease is an optional structured prerelease tag, e.g. "rc1".
type Prerelease struct {
	Kind   PrereleaseKind
	Number uint64
}

func (p Prerelease) String() string {
	switch p.Kind {
	case PrereleaseAlpha:
		return fmt.Sprintf("a%d", p.Number)
	case PrereleaseBeta:
		return fmt.Sprintf("b%d", p.Number)
	case PrereleaseRC:
		return fmt.Sprintf("rc%d", p.Number)
	default:
		return ""
	}
}

// ParsePrerelease parses a bare prerelease tag (e.g. "rc1", "a2", "b0"),
// the same suffix grammar Parse accepts after the patch component. An
// empty string parses as the no-prerelease zero value.
func ParsePrerelease(s string) (Prerelease, error) {
	return parsePrerelease(s)
}

func parsePrerelease(s string) (Prerelease, error) {
	if s == "" {
		return Prerelease{}, nil
	}
	var kind PrereleaseKind
	var rest string
	switch {
	case strings.HasPrefix(s, "rc"):
		kind, rest = PrereleaseRC, s[2:]
	case strings.HasPrefix(s, "a"):
		kind, rest = PrereleaseAlpha, s[1:]
	case strings.HasPrefix(s, "b"):
		kind, rest = PrereleaseBeta, s[1:]
	default:
		return Prerelease{}, fmt.Errorf("invalid prerelease tag: %q", s)
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return Prerelease{}, fmt.Errorf("invalid prerelease number in %q: %w", s, err)
	}
	return Prerelease{Kind: kind, Number: n}, nil
}

// Cmp orders prereleases so that "no prerelease" (a final release) sorts
// after any prerelease of the same version, and alpha < beta < rc.
func (p Prerelease) Cmp(o Prerelease) int {
	return p.cmp(o)
}

// cmp orders prereleases so that "no prerelease" (a final release) sorts
// after any prerelease of the same version, and alpha < beta < rc.
func (p Prerelease) cmp(o Prerelease) int {
	pFinal := p.Kind == PrereleaseNone
	oFinal := o.Kind == PrereleaseNone
	if pFinal != oFinal {
		if pFinal {
			return 1
		}
		return -1
	}
	if pFinal && oFinal {
		return 0
	}
	if p.Kind != o.Kind {
		if p.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch {
	case p.Number < o.Number:
		return -1
	case p.Number > o.Number:
		return 1
	default:
		return 0
	}
}

// Key is the typed identity of a managed interpreter: implementation,
// full version (major.minor.patch plus optional prerelease), platform
// (os/arch/libc), and build variant.
type Key struct {
	Implementation Implementation
	Major          uint8
	Minor          uint8
	Patch          uint8
	Prerelease     Prerelease
	Os             pyplatform.Os
	Arch           pyplatform.Arch
	Libc           pyplatform.Libc
	Variant        pyplatform.Variant
}

// New constructs a Key directly from its fields. The patch component
// always defaults to 0 if unset by the caller.
func New(
	impl Implementation, major, minor, patch uint8, pre Prerelease,
	os pyplatform.Os, arch pyplatform.Arch, libc pyplatform.Libc, variant pyplatform.Variant,
) Key {
	return Key{
		Implementation: impl,
		Major:          major,
		Minor:          minor,
		Patch:          patch,
		Prerelease:     pre,
		Os:             os,
		Arch:           arch,
		Libc:           libc,
		Variant:        variant,
	}
}

// String renders the canonical on-disk/user-facing form:
// impl-M.m.p[pre][+variant]-os-arch-libc.
func (k Key) String() string {
	variant := ""
	if k.Variant == pyplatform.VariantFreethreaded {
		variant = "+" + k.Variant.String()
	}
	return fmt.Sprintf("%s-%d.%d.%d%s%s-%s-%s-%s",
		k.Implementation, k.Major, k.Minor, k.Patch, k.Prerelease, variant, k.Os, k.Arch, k.Libc)
}

// ParseError names the offending field of a key string that failed to parse.
type ParseError struct {
	Key    string
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse installation key %q: %s: %s", e.Key, e.Field, e.Reason)
}

// Parse parses the canonical key string form produced by String.
// Round-trip: Parse(k.String()) == k for any valid Key k.
func Parse(s string) (Key, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return Key{}, &ParseError{Key: s, Field: "structure", Reason: "not enough `-`-separated fields"}
	}
	implRaw, versionRaw, osRaw, archRaw, libcRaw := parts[0], parts[1], parts[2], parts[3], parts[4]

	impl := ParseImplementation(implRaw)

	os, err := pyplatform.ParseOs(osRaw)
	if err != nil {
		return Key{}, &ParseError{Key: s, Field: "os", Reason: err.Error()}
	}
	arch, err := pyplatform.ParseArch(archRaw)
	if err != nil {
		return Key{}, &ParseError{Key: s, Field: "arch", Reason: err.Error()}
	}
	libc, err := pyplatform.ParseLibc(libcRaw)
	if err != nil {
		return Key{}, &ParseError{Key: s, Field: "libc", Reason: err.Error()}
	}

	versionPart := versionRaw
	variant := pyplatform.VariantDefault
	if idx := strings.IndexByte(versionRaw, '+'); idx != -1 {
		versionPart = versionRaw[:idx]
		variant, err = pyplatform.ParseVariant(versionRaw[idx+1:])
		if err != nil {
			return Key{}, &ParseError{Key: s, Field: "variant", Reason: err.Error()}
		}
	}

	major, minor, patch, pre, err := parseVersion(versionPart)
	if err != nil {
		return Key{}, &ParseError{Key: s, Field: "version", Reason: err.Error()}
	}

	return Key{
		Implementation: impl,
		Major:          major,
		Minor:          minor,
		Patch:          patch,
		Prerelease:     pre,
		Os:             os,
		Arch:           arch,
		Libc:           libc,
		Variant:        variant,
	}, nil
}

// parseVersion accepts M.m[.p][pre], where pre is one of a<N>, b<N>, rc<N>
// directly appended with no separator (e.g. "3.13.0rc1").
func parseVersion(s string) (major, minor, patch uint8, pre Prerelease, err error) {
	// Split off any trailing prerelease tag before the dotted numeric parts.
	numEnd := len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' || (c >= '0' && c <= '9') {
			continue
		}
		numEnd = i
		break
	}
	numeric, preRaw := s[:numEnd], s[numEnd:]

	fields := strings.Split(numeric, ".")
	if len(fields) < 2 || len(fields) > 3 {
		err = fmt.Errorf("invalid version %q: expected M.m[.p]", s)
		return
	}

	parseU8 := func(field string) (uint8, error) {
		n, convErr := strconv.ParseUint(field, 10, 8)
		if convErr != nil {
			return 0, fmt.Errorf("invalid version component %q: %w", field, convErr)
		}
		return uint8(n), nil
	}

	var majorV, minorV uint64
	majorV, err = strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		err = fmt.Errorf("invalid major version %q: %w", fields[0], err)
		return
	}
	minorV, err = strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		err = fmt.Errorf("invalid minor version %q: %w", fields[1], err)
		return
	}
	major, minor = uint8(majorV), uint8(minorV)

	if len(fields) == 3 {
		patch, err = parseU8(fields[2])
		if err != nil {
			return
		}
	}

	pre, err = parsePrerelease(preRaw)
	return
}

// Cmp imposes a total order: lexicographic over
// (implementation, (major, minor, patch, prerelease), os, arch, libc,
// variant), with variant compared last so that the default variant
// sorts before freethreaded at otherwise-equal keys.
func (k Key) Cmp(o Key) int {
	if c := strings.Compare(k.Implementation.String(), o.Implementation.String()); c != 0 {
		return c
	}
	if c := cmpU8(k.Major, o.Major); c != 0 {
		return c
	}
	if c := cmpU8(k.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmpU8(k.Patch, o.Patch); c != 0 {
		return c
	}
	if c := k.Prerelease.cmp(o.Prerelease); c != 0 {
		return c
	}
	if c := strings.Compare(k.Os.String(), o.Os.String()); c != 0 {
		return c
	}
	if c := strings.Compare(k.Arch.String(), o.Arch.String()); c != 0 {
		return c
	}
	if c := strings.Compare(k.Libc.String(), o.Libc.String()); c != 0 {
		return c
	}
	// "default" < "freethreaded" lexicographically already.
	return strings.Compare(k.Variant.String(), o.Variant.String())
}

func cmpU8(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MinorKey returns the (implementation, major, minor, variant, os,
// arch, libc) identity that names this key's per-minor anchor, omitting
// the patch component that changes across upgrades.
func (k Key) MinorKey() string {
	variant := ""
	if k.Variant == pyplatform.VariantFreethreaded {
		variant = "+" + k.Variant.String()
	}
	return fmt.Sprintf("%s-%d.%d%s-%s-%s-%s", k.Implementation, k.Major, k.Minor, variant, k.Os, k.Arch, k.Libc)
}

// ExecutableName returns the canonical unversioned executable name, e.g.
// "python" or "python.exe", with the variant suffix applied.
func (k Key) ExecutableName() string {
	return fmt.Sprintf("%s%s%s", baseExecutableStem(k.Implementation), k.Variant.Suffix(), pyplatform.ExeSuffix(k.Os))
}

// ExecutableNameMajor returns the canonical major-versioned executable
// name, e.g. "python3".
func (k Key) ExecutableNameMajor() string {
	return fmt.Sprintf("%s%d%s%s", baseExecutableStem(k.Implementation), k.Major, k.Variant.Suffix(), pyplatform.ExeSuffix(k.Os))
}

// ExecutableNameMinor returns the canonical minor-versioned executable
// name, e.g. "python3.12".
func (k Key) ExecutableNameMinor() string {
	return fmt.Sprintf("%s%d.%d%s%s", baseExecutableStem(k.Implementation), k.Major, k.Minor, k.Variant.Suffix(), pyplatform.ExeSuffix(k.Os))
}

func baseExecutableStem(impl Implementation) string {
	if impl.IsKnown() && impl.Known() != ImplCPython {
		return impl.String()
	}
	return "python"
}

// AliasNames returns the additional implementation-specific executable
// aliases created alongside the canonical names (e.g. "pypy3" for PyPy,
// "graalpy" for GraalPy). Returns nil for CPython and unknown
// implementations.
func (k Key) AliasNames() []string {
	exe := pyplatform.ExeSuffix(k.Os)
	switch {
	case k.Implementation.IsKnown() && k.Implementation.Known() == ImplPyPy:
		return []string{
			fmt.Sprintf("pypy%s", exe),
			fmt.Sprintf("pypy%d%s", k.Major, exe),
			fmt.Sprintf("pypy%d.%d%s", k.Major, k.Minor, exe),
		}
	case k.Implementation.IsKnown() && k.Implementation.Known() == ImplGraalPy:
		return []string{fmt.Sprintf("graalpy%s", exe)}
	default:
		return nil
	}
}
