package pydiscover

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tsukumogami/pyinstall/internal/pykey"
)

// Interpreter is a probed Python executable: its path on disk plus the
// identity pydiscover was able to determine by asking it.
type Interpreter struct {
	Path           string
	Implementation pykey.Implementation
	Major          uint8
	Minor          uint8
	Patch          uint8
	Managed        bool

	// BaseExecutable is sys._base_executable as reported by the
	// interpreter: the real executable backing Path when Path is itself
	// a venv's python, and equal to Path otherwise. The venv builder
	// uses this to find the interpreter a new venv should actually
	// point at when chaining off an active or parent virtual
	// environment (see pyvenv).
	BaseExecutable string
}

// probeScript is executed with `-c` against each candidate; its output
// is a single line of implementation, major, minor, patch, and
// sys._base_executable separated by spaces, matching the fields Probe
// needs to build an Interpreter.
const probeScript = `import sys
name = sys.implementation.name
v = sys.version_info
base = getattr(sys, "_base_executable", sys.executable)
print(name, v.major, v.minor, v.micro, base)
`

// Prober determines the identity of the interpreter at path. It exists
// as an interface so discovery can be tested without executing a real
// Python interpreter.
type Prober interface {
	Probe(ctx context.Context, path string) (Interpreter, error)
}

// execProber is the production Prober: it runs the candidate
// executable and parses its reported implementation and version.
type execProber struct{}

func (execProber) Probe(ctx context.Context, path string) (Interpreter, error) {
	cmd := exec.CommandContext(ctx, path, "-c", probeScript)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return Interpreter{}, &probeError{Path: path, Err: err}
	}

	fields := strings.SplitN(strings.TrimSpace(stdout.String()), " ", 5)
	if len(fields) != 5 {
		return Interpreter{}, &probeError{Path: path, Err: fmt.Errorf("unexpected probe output: %q", stdout.String())}
	}

	major, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return Interpreter{}, &probeError{Path: path, Err: err}
	}
	minor, err := strconv.ParseUint(fields[2], 10, 8)
	if err != nil {
		return Interpreter{}, &probeError{Path: path, Err: err}
	}
	patch, err := strconv.ParseUint(fields[3], 10, 8)
	if err != nil {
		return Interpreter{}, &probeError{Path: path, Err: err}
	}

	impl := pykey.ParseImplementation(fields[0])
	return Interpreter{
		Path:           path,
		Implementation: impl,
		Major:          uint8(major),
		Minor:          uint8(minor),
		Patch:          uint8(patch),
		BaseExecutable: fields[4],
	}, nil
}

// cmpInterpreter orders two interpreters by (implementation, major, minor, patch),
// the same precedence pykey.Key.Cmp uses for its version component.
func cmpInterpreter(a, b Interpreter) int {
	if a.Implementation.String() != b.Implementation.String() {
		return strings.Compare(a.Implementation.String(), b.Implementation.String())
	}
	if a.Major != b.Major {
		return int(a.Major) - int(b.Major)
	}
	if a.Minor != b.Minor {
		return int(a.Minor) - int(b.Minor)
	}
	return int(a.Patch) - int(b.Patch)
}
