package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/progress"
	"github.com/tsukumogami/pyinstall/internal/pydownload"
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [minor]",
	Short: "Reinstall installed minor versions at their newest catalog patch",
	Long: `upgrade reinstalls every installed (implementation, major, minor,
variant, platform) group at the newest patch the catalog offers,
retargeting each group's per-minor anchor so already-created virtual
environments pick up the new patch without being recreated. Passing
minor (e.g. "3.10") restricts this to groups matching it; only a minor
identifier is accepted, not a full patch version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpgrade,
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	var minorFilter string
	if len(args) == 1 {
		if !isMinorOnly(args[0]) {
			return &usageError{msg: "upgrade only accepts minor versions"}
		}
		minorFilter = args[0]
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	client := httpClient()
	catalog, err := catalogProvider(client)(cmd.Context())
	if err != nil {
		return err
	}

	installs, err := reg.List()
	if err != nil {
		return err
	}

	groups := groupByMinor(installs, minorFilter)
	minorKeys := make([]string, 0, len(groups))
	for mk := range groups {
		minorKeys = append(minorKeys, mk)
	}
	sort.Strings(minorKeys)

	fetcher := pydownload.NewFetcher(client, reg)
	fetcher.SetProgress(progress.ShouldShowProgress())

	installed := 0
	for _, mk := range minorKeys {
		best := groups[mk]
		impl, os, arch, libc, variant := best.Implementation, best.Os, best.Arch, best.Libc, best.Variant
		constraint := fmt.Sprintf("%d.%d", best.Major, best.Minor)
		filled := pydownload.Fill(pydownload.Request{
			Implementation:    &impl,
			VersionConstraint: constraint,
			Os:                &os,
			Arch:              &arch,
			Libc:              &libc,
			Variant:           &variant,
		})

		descriptor, err := pydownload.Plan(catalog, filled)
		if err != nil {
			if _, ok := err.(*pydownload.NoDownloadFoundError); ok {
				continue
			}
			return err
		}
		if descriptor.Key.Cmp(best) <= 0 {
			continue
		}

		if _, err := fetcher.Fetch(cmd.Context(), descriptor); err != nil {
			return err
		}
		installed++
		printInfof("Installed %s\n", descriptor.Key.String())
	}

	if installed == 0 {
		// An unqualified upgrade summarizes a no-op; upgrade <minor>
		// stays silent, since its result is "nothing to do" for the one
		// group the caller named rather than a batch outcome worth
		// announcing.
		if minorFilter == "" {
			printInfo("all requested versions already on latest patch")
		}
	} else {
		printInfof("Installed %d version(s)\n", installed)
	}
	return nil
}

// groupByMinor reduces installs to the highest-patch key per
// (implementation, major, minor, variant, os, arch, libc) group,
// restricted to groups matching minorFilter (an "M.m" string, or
// every group when empty).
func groupByMinor(installs []pyregistry.Installation, minorFilter string) map[string]pykey.Key {
	best := map[string]pykey.Key{}
	for _, inst := range installs {
		if minorFilter != "" && !minorMatches(inst.Key, minorFilter) {
			continue
		}
		mk := inst.Key.MinorKey()
		if current, ok := best[mk]; !ok || inst.Key.Cmp(current) > 0 {
			best[mk] = inst.Key
		}
	}
	return best
}

func minorMatches(key pykey.Key, minor string) bool {
	return fmt.Sprintf("%d.%d", key.Major, key.Minor) == minor
}

// isMinorOnly reports whether s has the form "M.m" (exactly two
// numeric components), rejecting a patch-qualified version like
// "3.10.8".
func isMinorOnly(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 8); err != nil {
			return false
		}
	}
	return true
}
