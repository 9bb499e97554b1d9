package pyvenv

import "fmt"

// PreconditionError reports that Create's target path cannot be used:
// it names a regular file, or a non-empty directory that is neither
// empty nor an existing venv Create is allowed to replace.
type PreconditionError struct {
	Path   string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot create virtual environment at %s: %s", e.Path, e.Reason)
}
