package pydiscover

import "fmt"

// MissingPythonError is returned when no candidate source produced an
// interpreter satisfying the request. It is the "soft" discovery
// failure find_or_download is allowed to recover from by downloading.
type MissingPythonError struct {
	Request PythonRequest
}

func (e *MissingPythonError) Error() string {
	switch e.Request.Kind {
	case RequestVersion:
		return fmt.Sprintf("no interpreter found matching %s", e.Request.VersionConstraint)
	case RequestKey:
		return fmt.Sprintf("no interpreter found matching %s", e.Request.Key.String())
	case RequestPath:
		return fmt.Sprintf("no interpreter found at %s", e.Request.Path)
	case RequestImplementationVersion:
		return fmt.Sprintf("no %s interpreter found matching %s", e.Request.Implementation, e.Request.VersionConstraint)
	default:
		return "no interpreter found"
	}
}

// isNonCritical reports whether err is a discovery failure
// find_or_download is allowed to paper over by attempting a download:
// a missing interpreter, or a probe that merely failed to execute a
// candidate (a stale PATH entry, a broken symlink).
func isNonCritical(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case *MissingPythonError:
		return true
	case *probeError:
		return true
	}
	return false
}

// probeError wraps a failure to probe a single candidate path. It never
// aborts discovery; the candidate is simply skipped.
type probeError struct {
	Path string
	Err  error
}

func (e *probeError) Error() string {
	return fmt.Sprintf("failed to probe %s: %v", e.Path, e.Err)
}

func (e *probeError) Unwrap() error {
	return e.Err
}
