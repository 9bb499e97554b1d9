//go:build !windows

package pydiscover

import "context"

// platformRegistrySource has nothing to offer on POSIX; the Windows py
// launcher registry has no analogue there.
type platformRegistrySource struct{}

func (s platformRegistrySource) Name() string  { return "platform-registry" }
func (s platformRegistrySource) Virtual() bool { return false }

func (s platformRegistrySource) Candidates(ctx context.Context) ([]string, error) {
	return nil, nil
}
