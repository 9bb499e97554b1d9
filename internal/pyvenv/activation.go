package pyvenv

import (
	"os"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// writeActivationScripts renders and writes every template in
// activationTemplates into the venv's scripts directory.
func writeActivationScripts(scheme Scheme, key pykey.Key, opts Options) error {
	relSite, err := filepath.Rel(scheme.Root, scheme.SitePackages)
	if err != nil {
		relSite = scheme.SitePackages
	}

	sep := ":"
	if key.Os == pyplatform.OsWindows {
		sep = ";"
	}

	params := renderParams{
		VirtualEnvDir:        scheme.Root,
		BinName:              filepath.Base(scheme.ScriptsDir),
		VirtualPrompt:        "(" + promptFor(opts) + ") ",
		PathSep:              sep,
		RelativeSitePackages: filepath.ToSlash(relSite),
		Relocatable:          opts.Relocatable,
	}

	for _, tmpl := range activationTemplates {
		content := renderActivationScript(tmpl, params)
		dest := filepath.Join(scheme.ScriptsDir, tmpl.name)
		if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}
