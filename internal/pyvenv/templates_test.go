package pyvenv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderActivationScriptSubstitutesPlaceholders(t *testing.T) {
	params := renderParams{
		VirtualEnvDir:        "/home/user/proj/.venv",
		BinName:              "bin",
		VirtualPrompt:        "(proj) ",
		PathSep:              ":",
		RelativeSitePackages: "lib/python3.12/site-packages",
	}

	out := renderActivationScript(activationTemplate{"activate", activateSh}, params)
	require.Contains(t, out, `VIRTUAL_ENV="/home/user/proj/.venv"`)
	require.Contains(t, out, `PATH="$VIRTUAL_ENV/bin:$PATH"`)
	require.Contains(t, out, `VIRTUAL_ENV_PROMPT="(proj) "`)
	require.NotContains(t, out, "{{")
}

func TestRenderActivationScriptRelocatableUsesDynamicExpr(t *testing.T) {
	params := renderParams{
		VirtualEnvDir: "/home/user/proj/.venv",
		BinName:       "bin",
		Relocatable:   true,
	}

	out := renderActivationScript(activationTemplate{"activate", activateSh}, params)
	require.NotContains(t, out, "/home/user/proj/.venv")
	require.Contains(t, out, relocatableShells["activate"])
}

func TestRenderActivationScriptNonRelocatableShellIgnoresFlag(t *testing.T) {
	params := renderParams{
		VirtualEnvDir: "/home/user/proj/.venv",
		Relocatable:   true,
	}

	out := renderActivationScript(activationTemplate{"activate.csh", activateCsh}, params)
	require.Contains(t, out, "/home/user/proj/.venv")
}

func TestActivationTemplatesCoverFixedSet(t *testing.T) {
	var names []string
	for _, tmpl := range activationTemplates {
		names = append(names, tmpl.name)
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"activate", "activate.csh", "activate.fish", "activate.nu", "activate.ps1", "activate.bat", "deactivate.bat", "pydoc.bat", "activate_this.py"} {
		require.Contains(t, joined, want)
	}
	require.Len(t, activationTemplates, 9)
}
