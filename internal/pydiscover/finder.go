package pydiscover

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/tsukumogami/pyinstall/internal/log"
	"github.com/tsukumogami/pyinstall/internal/pydownload"
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

// CatalogProvider supplies the download catalog FindOrDownload plans
// against, typically the cached-then-refreshed catalog that
// catalogProvider in cmd/pyinstall/helpers.go wires up for the running
// command.
type CatalogProvider func(ctx context.Context) (*pydownload.Catalog, error)

// Finder resolves PythonRequests against the host's candidate sources,
// trying each in preference order and probing candidates until one
// satisfies the request.
type Finder struct {
	Sources []Source
	Prober  Prober
	Fetcher *pydownload.Fetcher
	Catalog CatalogProvider
}

// NewFinder builds a Finder with the standard candidate sources:
// active venv, parent venv, the managed registry, PATH, and the
// platform-specific registry (py launcher on Windows, nothing on
// POSIX).
func NewFinder(registry *pyregistry.Registry, fetcher *pydownload.Fetcher, catalog CatalogProvider) *Finder {
	return &Finder{
		Sources: []Source{
			activeVenvSource{},
			parentVenvSource{},
			registrySource{registry: registry},
			pathSource{},
			platformRegistrySource{},
		},
		Prober:  execProber{},
		Fetcher: fetcher,
		Catalog: catalog,
	}
}

// predicate reports whether interp found at path satisfies a request.
type predicate func(interp Interpreter, path string) bool

// Find tries each candidate source in order, probing candidates until
// one satisfies the request, and returns the first match.
func (f *Finder) Find(ctx context.Context, req PythonRequest, envPref EnvironmentPreference, pyPref PythonPreference) (Interpreter, error) {
	pred, err := buildPredicate(req)
	if err != nil {
		return Interpreter{}, err
	}

	for _, source := range f.Sources {
		if !sourceAllowed(source, envPref) {
			continue
		}
		candidates, err := source.Candidates(ctx)
		if err != nil {
			log.Default().Warn("pydiscover: source failed", "source", source.Name(), "error", err)
			continue
		}
		for _, path := range candidates {
			if !preferenceAllows(pyPref, source) {
				continue
			}
			interp, err := f.Prober.Probe(ctx, path)
			if err != nil {
				continue
			}
			interp.Managed = !source.Virtual() && source.Name() == "registry"
			if pred(interp, path) {
				return interp, nil
			}
		}
	}
	return Interpreter{}, &MissingPythonError{Request: req}
}

// FindBest relaxes the match on a miss: it first tries an exact
// (implementation, major, minor, patch) match, then drops the patch
// requirement, then drops the minor requirement too, returning the
// highest remaining version satisfying each successively weaker tier.
func (f *Finder) FindBest(ctx context.Context, req PythonRequest, envPref EnvironmentPreference, pyPref PythonPreference) (Interpreter, error) {
	wanted, ok := parseWanted(req)
	if !ok {
		return f.Find(ctx, req, envPref, pyPref)
	}

	tiers := []predicate{
		exactPredicate(wanted),
		dropPatchPredicate(wanted),
		dropMinorPredicate(wanted),
	}

	for _, pred := range tiers {
		best, found := f.findHighest(ctx, pred, envPref, pyPref)
		if found {
			return best, nil
		}
	}
	return Interpreter{}, &MissingPythonError{Request: req}
}

// findHighest scans every allowed candidate from every source and
// returns the highest-versioned interpreter satisfying pred.
func (f *Finder) findHighest(ctx context.Context, pred predicate, envPref EnvironmentPreference, pyPref PythonPreference) (Interpreter, bool) {
	var best Interpreter
	found := false

	for _, source := range f.Sources {
		if !sourceAllowed(source, envPref) {
			continue
		}
		candidates, err := source.Candidates(ctx)
		if err != nil {
			log.Default().Warn("pydiscover: source failed", "source", source.Name(), "error", err)
			continue
		}
		for _, path := range candidates {
			if !preferenceAllows(pyPref, source) {
				continue
			}
			interp, err := f.Prober.Probe(ctx, path)
			if err != nil {
				continue
			}
			interp.Managed = !source.Virtual() && source.Name() == "registry"
			if !pred(interp, path) {
				continue
			}
			if !found || cmpInterpreter(interp, best) > 0 {
				best = interp
				found = true
			}
		}
	}
	return best, found
}

// FindOrDownload calls Find; on a MissingPython or other non-critical
// discovery error, it falls through to downloading a managed
// interpreter when the preference and request permit it. If the
// download planner reports NoDownloadFound, the original discovery error
// is surfaced instead, since that is the more informative failure for
// the caller.
func (f *Finder) FindOrDownload(ctx context.Context, req PythonRequest, envPref EnvironmentPreference, pyPref PythonPreference) (Interpreter, error) {
	interp, err := f.Find(ctx, req, envPref, pyPref)
	if err == nil {
		return interp, nil
	}
	if !isNonCritical(err) {
		return Interpreter{}, err
	}
	if !pyPref.AllowsManaged() || f.Fetcher == nil || f.Catalog == nil {
		return Interpreter{}, err
	}

	downloadReq, ok := toDownloadRequest(req)
	if !ok {
		return Interpreter{}, err
	}

	catalog, catalogErr := f.Catalog(ctx)
	if catalogErr != nil {
		return Interpreter{}, catalogErr
	}

	filled := pydownload.Fill(downloadReq)
	descriptor, planErr := pydownload.Plan(catalog, filled)
	if planErr != nil {
		if _, ok := planErr.(*pydownload.NoDownloadFoundError); ok {
			return Interpreter{}, err
		}
		return Interpreter{}, planErr
	}

	installation, fetchErr := f.Fetcher.Fetch(ctx, descriptor)
	if fetchErr != nil {
		return Interpreter{}, fetchErr
	}

	exePath := filepath.Join(installation.Path, pyplatform.ScriptsDirName(installation.Key.Os), installation.Key.ExecutableName())
	return Interpreter{
		Path:           exePath,
		Implementation: installation.Key.Implementation,
		Major:          installation.Key.Major,
		Minor:          installation.Key.Minor,
		Patch:          installation.Key.Patch,
		Managed:        true,
		BaseExecutable: exePath,
	}, nil
}

func toDownloadRequest(req PythonRequest) (pydownload.Request, bool) {
	switch req.Kind {
	case RequestVersion:
		return pydownload.Request{VersionConstraint: req.VersionConstraint}, true
	case RequestImplementationVersion:
		impl := req.Implementation
		return pydownload.Request{Implementation: &impl, VersionConstraint: req.VersionConstraint}, true
	case RequestKey:
		impl := req.Key.Implementation
		os := req.Key.Os
		arch := req.Key.Arch
		libc := req.Key.Libc
		variant := req.Key.Variant
		constraint := strconv.Itoa(int(req.Key.Major)) + "." + strconv.Itoa(int(req.Key.Minor)) + "." + strconv.Itoa(int(req.Key.Patch))
		return pydownload.Request{
			Implementation:    &impl,
			VersionConstraint: constraint,
			Os:                &os,
			Arch:              &arch,
			Libc:              &libc,
			Variant:           &variant,
		}, true
	case RequestDefault:
		return pydownload.Request{}, true
	default:
		return pydownload.Request{}, false
	}
}

// wantedVersion is the parsed target of a FindBest relaxation ladder.
type wantedVersion struct {
	implementation *pykey.Implementation
	major, minor   uint8
	patch          uint8
	hasPatch       bool
}

func parseWanted(req PythonRequest) (wantedVersion, bool) {
	switch req.Kind {
	case RequestKey:
		impl := req.Key.Implementation
		return wantedVersion{implementation: &impl, major: req.Key.Major, minor: req.Key.Minor, patch: req.Key.Patch, hasPatch: true}, true
	case RequestVersion:
		return parseVersionString(nil, req.VersionConstraint)
	case RequestImplementationVersion:
		impl := req.Implementation
		return parseVersionString(&impl, req.VersionConstraint)
	default:
		return wantedVersion{}, false
	}
}

func parseVersionString(impl *pykey.Implementation, s string) (wantedVersion, bool) {
	s = strings.TrimPrefix(s, "=")
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return wantedVersion{}, false
	}
	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return wantedVersion{}, false
	}
	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return wantedVersion{}, false
	}
	w := wantedVersion{implementation: impl, major: uint8(major), minor: uint8(minor)}
	if len(parts) >= 3 {
		patch, err := strconv.ParseUint(parts[2], 10, 8)
		if err == nil {
			w.patch = uint8(patch)
			w.hasPatch = true
		}
	}
	return w, true
}

func exactPredicate(w wantedVersion) predicate {
	return func(interp Interpreter, _ string) bool {
		if !implMatches(w.implementation, interp) {
			return false
		}
		if interp.Major != w.major || interp.Minor != w.minor {
			return false
		}
		if w.hasPatch && interp.Patch != w.patch {
			return false
		}
		return true
	}
}

func dropPatchPredicate(w wantedVersion) predicate {
	return func(interp Interpreter, _ string) bool {
		return implMatches(w.implementation, interp) && interp.Major == w.major && interp.Minor == w.minor
	}
}

func dropMinorPredicate(w wantedVersion) predicate {
	return func(interp Interpreter, _ string) bool {
		return implMatches(w.implementation, interp) && interp.Major == w.major
	}
}

func implMatches(want *pykey.Implementation, interp Interpreter) bool {
	if want == nil {
		return true
	}
	return interp.Implementation.String() == want.String()
}

func buildPredicate(req PythonRequest) (predicate, error) {
	switch req.Kind {
	case RequestDefault:
		return func(Interpreter, string) bool { return true }, nil
	case RequestPath:
		return func(_ Interpreter, path string) bool { return path == req.Path }, nil
	case RequestKey:
		key := req.Key
		return func(interp Interpreter, _ string) bool {
			return interp.Implementation.String() == key.Implementation.String() &&
				interp.Major == key.Major && interp.Minor == key.Minor && interp.Patch == key.Patch
		}, nil
	case RequestVersion:
		constraint, err := semver.NewConstraint(req.VersionConstraint)
		if err != nil {
			return nil, err
		}
		return func(interp Interpreter, _ string) bool {
			v, err := semver.NewVersion(interpVersionString(interp))
			if err != nil {
				return false
			}
			return constraint.Check(v)
		}, nil
	case RequestImplementationVersion:
		constraint, err := semver.NewConstraint(req.VersionConstraint)
		if err != nil {
			return nil, err
		}
		impl := req.Implementation
		return func(interp Interpreter, _ string) bool {
			if interp.Implementation.String() != impl.String() {
				return false
			}
			v, err := semver.NewVersion(interpVersionString(interp))
			if err != nil {
				return false
			}
			return constraint.Check(v)
		}, nil
	default:
		return func(Interpreter, string) bool { return true }, nil
	}
}

func interpVersionString(interp Interpreter) string {
	return strconv.Itoa(int(interp.Major)) + "." + strconv.Itoa(int(interp.Minor)) + "." + strconv.Itoa(int(interp.Patch))
}

func sourceAllowed(source Source, envPref EnvironmentPreference) bool {
	switch envPref {
	case OnlyVirtual:
		return source.Virtual()
	case OnlySystem:
		return !source.Virtual()
	default:
		return true
	}
}

func preferenceAllows(pyPref PythonPreference, source Source) bool {
	managed := source.Name() == "registry"
	if managed {
		return pyPref.AllowsManaged()
	}
	return pyPref.AllowsSystem()
}
