package rebuild

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fedora-virt/copr-rebuild/internal/verrel"
)

// Stale compares the latest koji verrel of every catalog package against
// what the Copr project has built in each active chroot and returns the
// chroots needing a rebuild, keyed by package name. Packages that are
// current everywhere are absent from the result.
//
// A latest verrel without the expected dist tag means the registry data
// cannot be trusted for any package and fails the whole computation.
func Stale(catalog []Package, latest map[string]verrel.Verrel, built map[string]map[string]verrel.Verrel, chroots []string, filter *Filter) (map[string][]string, error) {
	stale := make(map[string][]string)

	for _, pkg := range catalog {
		latestVR, ok := latest[pkg.Name]
		if !ok {
			continue
		}
		latestVR, err := latestVR.StripDist()
		if err != nil {
			return nil, &PreconditionError{
				Reason: fmt.Sprintf("unparsable koji verrel for %s", pkg.Name),
				Err:    err,
			}
		}

		for _, chroot := range chroots {
			if filter.Excluded(pkg.Name, chroot) {
				continue
			}

			builtVR, ok := built[chroot][pkg.Name]
			if !ok {
				// never built in this chroot
				stale[pkg.Name] = append(stale[pkg.Name], chroot)
				continue
			}

			// the dist tag is not required on the built side
			builtVR, _ = builtVR.StripDist()
			builtVR = builtVR.StripEpoch()

			logrus.Debugf("%s in %s: built %s, latest %s", pkg.Name, chroot, builtVR, latestVR)
			if builtVR.OlderThan(latestVR) {
				stale[pkg.Name] = append(stale[pkg.Name], chroot)
			}
		}
	}

	return stale, nil
}
