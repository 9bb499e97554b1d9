package pyvenv

import "strings"

// activationTemplate names one of the fixed set of activation scripts
// a venv ships, and its body before placeholder substitution.
type activationTemplate struct {
	name string
	body string
}

// activationTemplates is the fixed set of scripts every venv gets,
// matching the set named in the external interface contract. Bodies
// use the five recognized placeholders; relocatable mode only rewrites
// VIRTUAL_ENV_DIR, and only for sh, fish, and cmd; the csh, nu, and
// PowerShell scripts always carry the literal path given at creation.
var activationTemplates = []activationTemplate{
	{"activate", activateSh},
	{"activate.csh", activateCsh},
	{"activate.fish", activateFish},
	{"activate.nu", activateNu},
	{"activate.ps1", activatePs1},
	{"activate.bat", activateBat},
	{"deactivate.bat", deactivateBat},
	{"pydoc.bat", pydocBat},
	{"activate_this.py", activateThisPy},
}

// relocatableShells names the templates whose VIRTUAL_ENV_DIR
// placeholder is replaced with a dynamic, shell-specific expression
// that resolves the venv's location at activation time instead of the
// literal path baked in at creation time.
var relocatableShells = map[string]string{
	"activate":      `$(CDPATH= cd -- "$(dirname -- "${BASH_SOURCE[0]:-$0}")/.." && pwd)`,
	"activate.fish": `(CDPATH= cd -- "(dirname -- (status --current-filename))/.." && pwd)`,
	"activate.bat":  `%~dp0..`,
}

// renderParams holds the values substituted into an activation
// template's placeholders.
type renderParams struct {
	VirtualEnvDir         string
	BinName               string
	VirtualPrompt         string
	PathSep               string
	RelativeSitePackages  string
	Relocatable           bool
}

func renderActivationScript(tmpl activationTemplate, p renderParams) string {
	envDir := p.VirtualEnvDir
	if p.Relocatable {
		if dyn, ok := relocatableShells[tmpl.name]; ok {
			envDir = dyn
		}
	}

	replacer := strings.NewReplacer(
		"{{ VIRTUAL_ENV_DIR }}", envDir,
		"{{ BIN_NAME }}", p.BinName,
		"{{ VIRTUAL_PROMPT }}", p.VirtualPrompt,
		"{{ PATH_SEP }}", p.PathSep,
		"{{ RELATIVE_SITE_PACKAGES }}", p.RelativeSitePackages,
	)
	return replacer.Replace(tmpl.body)
}

const activateSh = `# This file must be used with "source bin/activate" *from sh*
# you cannot run it directly

deactivate () {
    unset -f pydoc >/dev/null 2>&1 || true

    if [ -n "${_OLD_VIRTUAL_PATH:-}" ] ; then
        PATH="$_OLD_VIRTUAL_PATH"
        export PATH
        unset _OLD_VIRTUAL_PATH
    fi
    if [ -n "${_OLD_VIRTUAL_PS1:-}" ] ; then
        PS1="$_OLD_VIRTUAL_PS1"
        export PS1
        unset _OLD_VIRTUAL_PS1
    fi

    unset VIRTUAL_ENV
    unset VIRTUAL_ENV_PROMPT
    if [ ! "${1:-}" = "nondestructive" ] ; then
        unset -f deactivate
    fi
}

deactivate nondestructive

VIRTUAL_ENV="{{ VIRTUAL_ENV_DIR }}"
export VIRTUAL_ENV

_OLD_VIRTUAL_PATH="$PATH"
PATH="$VIRTUAL_ENV/{{ BIN_NAME }}{{ PATH_SEP }}$PATH"
export PATH

VIRTUAL_ENV_PROMPT="{{ VIRTUAL_PROMPT }}"
export VIRTUAL_ENV_PROMPT

if [ -z "${VIRTUAL_ENV_DISABLE_PROMPT:-}" ] ; then
    _OLD_VIRTUAL_PS1="${PS1:-}"
    PS1="${VIRTUAL_ENV_PROMPT}${PS1:-}"
    export PS1
fi

pydoc () {
    python -m pydoc "$@"
}

hash -r 2>/dev/null
`

const activateCsh = `# This file must be used with "source bin/activate.csh" *from csh*.
# You cannot run it directly.

set newline='\
'

alias deactivate 'unalias pydoc;\
test $?_OLD_VIRTUAL_PATH != 0 && setenv PATH "$_OLD_VIRTUAL_PATH" && unset _OLD_VIRTUAL_PATH;\
test $?_OLD_VIRTUAL_PROMPT != 0 && set prompt="$_OLD_VIRTUAL_PROMPT" && unset _OLD_VIRTUAL_PROMPT;\
unsetenv VIRTUAL_ENV;\
unsetenv VIRTUAL_ENV_PROMPT;\
test "\!:*" != "nondestructive" && unalias deactivate'

deactivate nondestructive

setenv VIRTUAL_ENV "{{ VIRTUAL_ENV_DIR }}"

set _OLD_VIRTUAL_PATH="$PATH"
setenv PATH "$VIRTUAL_ENV/{{ BIN_NAME }}:$PATH"

set _OLD_VIRTUAL_PROMPT="$prompt"

if (! "$?VIRTUAL_ENV_DISABLE_PROMPT") then
    set prompt = "{{ VIRTUAL_PROMPT }}$prompt"
    setenv VIRTUAL_ENV_PROMPT "{{ VIRTUAL_PROMPT }}"
endif

alias pydoc python -m pydoc

rehash
`

const activateFish = `# This file must be used with "source bin/activate.fish" *from fish*
# you cannot run it directly

function deactivate  -d "Exit virtual environment and return to normal shell environment"
    if test -n "$_OLD_VIRTUAL_PATH"
        set -gx PATH $_OLD_VIRTUAL_PATH
        set -e _OLD_VIRTUAL_PATH
    end

    if functions -q _old_fish_prompt
        functions -e fish_prompt
        functions -c _old_fish_prompt fish_prompt
        functions -e _old_fish_prompt
    end

    set -e VIRTUAL_ENV
    set -e VIRTUAL_ENV_PROMPT
    if test "$argv[1]" != "nondestructive"
        functions -e deactivate
    end
end

deactivate nondestructive

set -gx VIRTUAL_ENV "{{ VIRTUAL_ENV_DIR }}"

set -gx _OLD_VIRTUAL_PATH $PATH
set -gx PATH "$VIRTUAL_ENV/{{ BIN_NAME }}" $PATH

set -gx VIRTUAL_ENV_PROMPT "{{ VIRTUAL_PROMPT }}"

if test -z "$VIRTUAL_ENV_DISABLE_PROMPT"
    functions -c fish_prompt _old_fish_prompt
    function fish_prompt
        printf "%s%s" "$VIRTUAL_ENV_PROMPT" (_old_fish_prompt)
    end
end
`

const activateNu = `# This file must be used with "overlay use activate.nu" *from nu*
# you cannot run it directly

export-env {
    $env.VIRTUAL_ENV = "{{ VIRTUAL_ENV_DIR }}"
    $env._OLD_VIRTUAL_PATH = $env.PATH
    $env.PATH = ($env.PATH | prepend [$"($env.VIRTUAL_ENV)/{{ BIN_NAME }}"])
    $env.VIRTUAL_ENV_PROMPT = "{{ VIRTUAL_PROMPT }}"
}

export def deactivate [] {
    $env.PATH = $env._OLD_VIRTUAL_PATH
    hide-env _OLD_VIRTUAL_PATH
    hide-env VIRTUAL_ENV
    hide-env VIRTUAL_ENV_PROMPT
}
`

const activatePs1 = `$script:THIS_PATH = $myinvocation.mycommand.path
$script:BASE_DIR = Split-Path (Resolve-Path "$THIS_PATH/..") -Parent

function global:deactivate([switch] $NonDestructive) {
    if (Test-Path variable:_OLD_VIRTUAL_PATH) {
        $env:PATH = $variable:_OLD_VIRTUAL_PATH
        Remove-Variable "_OLD_VIRTUAL_PATH" -Scope global
    }

    if (Test-Path function:_old_virtual_prompt) {
        $function:prompt = $function:_old_virtual_prompt
        Remove-Item function:\_old_virtual_prompt
    }

    if ($env:VIRTUAL_ENV) {
        Remove-Item env:VIRTUAL_ENV -ErrorAction SilentlyContinue
    }
    if ($env:VIRTUAL_ENV_PROMPT) {
        Remove-Item env:VIRTUAL_ENV_PROMPT -ErrorAction SilentlyContinue
    }

    if (!$NonDestructive) {
        Remove-Item function:deactivate
    }
}

deactivate -nondestructive

$env:VIRTUAL_ENV = "{{ VIRTUAL_ENV_DIR }}"

New-Variable -Scope global -Name _OLD_VIRTUAL_PATH -Value $env:PATH
$env:PATH = "$env:VIRTUAL_ENV\{{ BIN_NAME }};$env:PATH"

$env:VIRTUAL_ENV_PROMPT = "{{ VIRTUAL_PROMPT }}"

if (!$env:VIRTUAL_ENV_DISABLE_PROMPT) {
    function global:_old_virtual_prompt {
        ""
    }
    $function:_old_virtual_prompt = $function:prompt
    function global:prompt {
        "{{ VIRTUAL_PROMPT }}$(& $function:_old_virtual_prompt;)"
    }
}
`

const activateBat = `@echo off

set "VIRTUAL_ENV={{ VIRTUAL_ENV_DIR }}"

if defined _OLD_VIRTUAL_PROMPT (
    set "PROMPT=%_OLD_VIRTUAL_PROMPT%"
) else (
    set "_OLD_VIRTUAL_PROMPT=%PROMPT%"
)
set "PROMPT={{ VIRTUAL_PROMPT }}%PROMPT%"

if defined _OLD_VIRTUAL_PYTHONHOME (
    set "PYTHONHOME=%_OLD_VIRTUAL_PYTHONHOME%"
) else (
    set "_OLD_VIRTUAL_PYTHONHOME=%PYTHONHOME%"
)
set PYTHONHOME=

if defined _OLD_VIRTUAL_PATH (
    set "PATH=%_OLD_VIRTUAL_PATH%"
) else (
    set "_OLD_VIRTUAL_PATH=%PATH%"
)
set "PATH=%VIRTUAL_ENV%\{{ BIN_NAME }};%PATH%"
set "VIRTUAL_ENV_PROMPT={{ VIRTUAL_PROMPT }}"
`

const deactivateBat = `@echo off

set PYTHONHOME=%_OLD_VIRTUAL_PYTHONHOME%
set _OLD_VIRTUAL_PYTHONHOME=

set PATH=%_OLD_VIRTUAL_PATH%
set _OLD_VIRTUAL_PATH=

set PROMPT=%_OLD_VIRTUAL_PROMPT%
set _OLD_VIRTUAL_PROMPT=

set VIRTUAL_ENV=
set VIRTUAL_ENV_PROMPT=
`

const pydocBat = `@echo off
python.exe -m pydoc %*
`

const activateThisPy = `"""Activate this virtual environment from within Python.

Usage: exec(open(this_file).read(), {'__file__': this_file})

This will set sys.prefix, sys.exec_prefix, and rewrite sys.path so
that packages installed into this venv are importable, without
spawning a subshell.
"""
import os
import site
import sys

try:
    abs_file = os.path.abspath(__file__)
except NameError:
    raise AssertionError("You must use exec(open(this_file).read(), {'__file__': this_file})")

bin_dir = os.path.dirname(abs_file)
base = os.path.dirname(bin_dir)

# prepend bin to PATH (this file is inside the bin directory)
os.environ["PATH"] = os.pathsep.join([bin_dir] + os.environ.get("PATH", "").split(os.pathsep))
os.environ["VIRTUAL_ENV"] = base

# add the virtual environment's site-packages to the host python
site_packages = os.path.join(base, "{{ RELATIVE_SITE_PACKAGES }}")
prev_length = len(sys.path)
site.addsitedir(site_packages)
sys.path[:] = sys.path[prev_length:] + sys.path[0:prev_length]

sys.real_prefix = sys.prefix
sys.prefix = base
`
