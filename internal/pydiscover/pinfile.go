package pydiscover

import (
	"os"
	"path/filepath"
	"strings"
)

// PinFileName is the file read by ReadPin, matching the filename the
// upstream tooling this project is compatible with also looks for.
const PinFileName = ".python-version"

// ReadPin looks for a .python-version file starting at dir and walking
// upward, returning its trimmed first line as a version constraint.
// Returns "", false if no pin file is found. A pin file forces exact
// discovery of the named version, taking precedence over
// PythonRequest::Default.
func ReadPin(dir string) (string, bool) {
	for {
		data, err := os.ReadFile(filepath.Join(dir, PinFileName))
		if err == nil {
			line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
			if line != "" {
				return line, true
			}
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// RequestFromPinOrDefault returns Version(pin) if a pin file is found
// starting at dir, otherwise Default().
func RequestFromPinOrDefault(dir string) PythonRequest {
	if pin, ok := ReadPin(dir); ok {
		return Version(pin)
	}
	return Default()
}
