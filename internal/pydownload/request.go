package pydownload

import (
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// Request describes a managed interpreter download, partially
// specified: any field may be left at its zero value, in which case
// Fill supplies a platform default.
type Request struct {
	Implementation    *pykey.Implementation
	VersionConstraint string // e.g. "3.12", "3.12.*", ">=3.11,<3.13"; empty means "latest"
	Os                *pyplatform.Os
	Arch              *pyplatform.Arch
	Libc              *pyplatform.Libc
	Variant           *pyplatform.Variant
}

// Filled is a Request with every field resolved to a concrete value,
// ready to be matched against a catalog.
type Filled struct {
	Implementation    pykey.Implementation
	VersionConstraint string
	Os                pyplatform.Os
	Arch              pyplatform.Arch
	Libc              pyplatform.Libc
	Variant           pyplatform.Variant
}

// Fill resolves every unset field of r to the current host's defaults:
// CPython, the running OS and architecture, the detected libc, and the
// default (GIL-enabled) variant. A missing VersionConstraint means
// "resolve to the newest version the catalog offers".
func Fill(r Request) Filled {
	f := Filled{
		Implementation:    pykey.NewImplementation(pykey.ImplCPython),
		VersionConstraint: r.VersionConstraint,
		Os:                pyplatform.CurrentOs(),
		Arch:              pyplatform.CurrentArch(),
		Libc:              pyplatform.DetectLibc(),
		Variant:           pyplatform.VariantDefault,
	}
	if r.Implementation != nil {
		f.Implementation = *r.Implementation
	}
	if r.Os != nil {
		f.Os = *r.Os
	}
	if r.Arch != nil {
		f.Arch = *r.Arch
	}
	if r.Libc != nil {
		f.Libc = *r.Libc
	}
	if r.Variant != nil {
		f.Variant = *r.Variant
	}
	if f.Os != pyplatform.OsLinux {
		f.Libc = pyplatform.LibcNone
	}
	return f
}
