package pydownload

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// NoDownloadFoundError is returned when no catalog entry satisfies a
// request. It is the terminal, non-retryable planning outcome that
// C6's find_or_download distinguishes from transport/IO errors.
type NoDownloadFoundError struct {
	Request Filled
}

func (e *NoDownloadFoundError) Error() string {
	return fmt.Sprintf("no download found for %s %s (%s/%s/%s/%s)",
		e.Request.Implementation, e.Request.VersionConstraint,
		e.Request.Os, e.Request.Arch, e.Request.Libc, e.Request.Variant)
}

// Descriptor is a concrete, resolved download: a single catalog entry
// paired with the installation key it will produce once fetched.
type Descriptor struct {
	Key         pykey.Key
	URL         string
	SHA256      string
	ArchiveKind string
	Size        int64
}

// Plan resolves a filled request against catalog, returning the
// highest matching version. Implementation, os, arch, libc, and
// variant must match exactly; VersionConstraint (if non-empty) is
// evaluated as a semver constraint against each candidate's
// major.minor.patch core (prerelease tags are ignored by the
// constraint and compared only to break ties between otherwise equal
// candidates, final releases outranking prereleases).
func Plan(catalog *Catalog, req Filled) (Descriptor, error) {
	var constraint *semver.Constraints
	if req.VersionConstraint != "" {
		c, err := semver.NewConstraint(req.VersionConstraint)
		if err != nil {
			return Descriptor{}, fmt.Errorf("invalid version constraint %q: %w", req.VersionConstraint, err)
		}
		constraint = c
	}

	var best *CatalogEntry
	var bestCore *semver.Version
	var bestPre pykey.Prerelease

	for i := range catalog.Entries {
		entry := &catalog.Entries[i]
		if !matchesPlatform(entry, req) {
			continue
		}

		core, preTag, err := splitVersion(entry.Version)
		if err != nil {
			continue
		}
		coreVersion, err := semver.NewVersion(core)
		if err != nil {
			continue
		}
		if constraint != nil && !constraint.Check(coreVersion) {
			continue
		}
		pre, err := pykey.ParsePrerelease(preTag)
		if err != nil {
			continue
		}

		if best == nil || coreVersion.GreaterThan(bestCore) || (coreVersion.Equal(bestCore) && pre.Cmp(bestPre) > 0) {
			best = entry
			bestCore = coreVersion
			bestPre = pre
		}
	}

	if best == nil {
		return Descriptor{}, &NoDownloadFoundError{Request: req}
	}

	key, err := keyFromEntry(*best, bestCore, bestPre)
	if err != nil {
		return Descriptor{}, fmt.Errorf("catalog entry for %s has unusable metadata: %w", best.Version, err)
	}

	return Descriptor{
		Key:         key,
		URL:         best.URL,
		SHA256:      best.SHA256,
		ArchiveKind: best.ArchiveKind,
		Size:        best.Size,
	}, nil
}

// splitVersion separates a PEP440-ish "M.m.p[preTag]" string into its
// numeric core and an optional trailing prerelease tag, mirroring
// pykey.Parse's own version grammar.
func splitVersion(s string) (core string, preTag string, err error) {
	numEnd := len(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' || (c >= '0' && c <= '9') {
			continue
		}
		numEnd = i
		break
	}
	core, preTag = s[:numEnd], s[numEnd:]
	if !strings.Contains(core, ".") {
		return "", "", fmt.Errorf("invalid version: %q", s)
	}
	parts := strings.Split(core, ".")
	if len(parts) == 2 {
		core += ".0"
	}
	return core, preTag, nil
}

func matchesPlatform(entry *CatalogEntry, req Filled) bool {
	if entry.Implementation != req.Implementation.String() {
		return false
	}
	if entry.Os != req.Os.String() {
		return false
	}
	if entry.Arch != req.Arch.String() {
		return false
	}
	if req.Os == pyplatform.OsLinux && entry.Libc != req.Libc.String() {
		return false
	}
	variant := entry.Variant
	if variant == "" {
		variant = string(pyplatform.VariantDefault)
	}
	if variant != req.Variant.String() {
		return false
	}
	return true
}

func keyFromEntry(entry CatalogEntry, core *semver.Version, pre pykey.Prerelease) (pykey.Key, error) {
	os, err := pyplatform.ParseOs(entry.Os)
	if err != nil {
		return pykey.Key{}, err
	}
	arch, err := pyplatform.ParseArch(entry.Arch)
	if err != nil {
		return pykey.Key{}, err
	}
	libc, err := pyplatform.ParseLibc(entry.Libc)
	if err != nil {
		if os != pyplatform.OsLinux {
			libc = pyplatform.LibcNone
		} else {
			return pykey.Key{}, err
		}
	}
	variant, err := pyplatform.ParseVariant(entry.Variant)
	if err != nil {
		return pykey.Key{}, err
	}
	impl := pykey.ParseImplementation(entry.Implementation)

	return pykey.New(impl, uint8(core.Major()), uint8(core.Minor()), uint8(core.Patch()),
		pre, os, arch, libc, variant), nil
}
