// Package pydiscover implements the interpreter discovery pipeline: it
// resolves a PythonRequest against the candidate sources available on
// the host (active venv, registry entries, PATH, platform registries),
// relaxing the match on a miss, and can fall through to downloading a
// managed interpreter when nothing on the host satisfies the request.
package pydiscover

import "github.com/tsukumogami/pyinstall/internal/pykey"

// PythonRequestKind discriminates the variants of PythonRequest.
type PythonRequestKind int

const (
	// RequestDefault matches any interpreter; used when the caller has
	// no specific version or path requirement.
	RequestDefault PythonRequestKind = iota
	// RequestVersion matches against a version constraint string (e.g.
	// "3.12", "3.12.4", ">=3.11,<3.13").
	RequestVersion
	// RequestKey matches a specific installation key exactly.
	RequestKey
	// RequestPath matches a specific interpreter executable path,
	// bypassing candidate enumeration entirely.
	RequestPath
	// RequestImplementationVersion matches a specific implementation
	// paired with a version constraint.
	RequestImplementationVersion
)

// PythonRequest describes what the caller is looking for. Exactly the
// fields relevant to Kind are meaningful; the rest are ignored.
type PythonRequest struct {
	Kind              PythonRequestKind
	VersionConstraint string
	Key               pykey.Key
	Path              string
	Implementation    pykey.Implementation
}

// Default returns the request that matches any interpreter.
func Default() PythonRequest {
	return PythonRequest{Kind: RequestDefault}
}

// Version returns a request matching constraint against any implementation.
func Version(constraint string) PythonRequest {
	return PythonRequest{Kind: RequestVersion, VersionConstraint: constraint}
}

// ForKey returns a request matching key exactly.
func ForKey(key pykey.Key) PythonRequest {
	return PythonRequest{Kind: RequestKey, Key: key}
}

// ForPath returns a request matching only the interpreter at path.
func ForPath(path string) PythonRequest {
	return PythonRequest{Kind: RequestPath, Path: path}
}

// ImplementationVersion returns a request matching impl with constraint.
func ImplementationVersion(impl pykey.Implementation, constraint string) PythonRequest {
	return PythonRequest{Kind: RequestImplementationVersion, Implementation: impl, VersionConstraint: constraint}
}

// EnvironmentPreference controls whether virtual environments are
// included or excluded from candidate enumeration.
type EnvironmentPreference int

const (
	// Any includes both virtual environments and system interpreters.
	Any EnvironmentPreference = iota
	// OnlyVirtual restricts candidates to virtual environments.
	OnlyVirtual
	// OnlySystem excludes virtual environments from candidates.
	OnlySystem
)

// PythonPreference controls whether managed (registry) or unmanaged
// (PATH, platform registry) interpreters are preferred or required.
type PythonPreference int

const (
	// PreferManaged tries managed interpreters before system ones, but
	// accepts either.
	PreferManaged PythonPreference = iota
	// PreferSystem tries system interpreters before managed ones, but
	// accepts either.
	PreferSystem
	// OnlyManaged rejects any interpreter not installed by the registry.
	OnlyManaged
	// OnlySystemPython rejects any interpreter installed by the registry.
	OnlySystemPython
)

// AllowsManaged reports whether p admits a managed interpreter.
func (p PythonPreference) AllowsManaged() bool {
	return p != OnlySystemPython
}

// AllowsSystem reports whether p admits a non-managed interpreter.
func (p PythonPreference) AllowsSystem() bool {
	return p != OnlyManaged
}
