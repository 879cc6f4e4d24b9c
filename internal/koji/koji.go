// Package koji queries the reference registry through the koji
// command-line client.
package koji

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/fedora-virt/copr-rebuild/internal/verrel"
)

// var alias for exec.CommandContext() that can be mocked for testing
var execCommand = exec.CommandContext

type Client struct {
	// Tag is the build target to query, normally rawhide.
	Tag string
}

// LatestBuild returns the newest build of pkg in the client's tag. Any
// failure here is fatal for the caller: a registry that cannot answer,
// or answers with something unparsable, cannot be trusted for any
// package. The subprocess output is included in the error.
func (c *Client) LatestBuild(ctx context.Context, pkg string) (verrel.Verrel, error) {
	cmd := execCommand(ctx, "koji", "latest-build", "--quiet", c.Tag, pkg)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return verrel.Verrel{}, fmt.Errorf("koji latest-build %s %s failed: %w: %s", c.Tag, pkg, err, output)
	}

	fields := strings.Fields(string(output))
	if len(fields) == 0 {
		return verrel.Verrel{}, fmt.Errorf("koji has no build of %s in %s", pkg, c.Tag)
	}

	name, vr, err := verrel.Parse(fields[0])
	if err != nil {
		return verrel.Verrel{}, fmt.Errorf("unparsable koji NVR for %s: %w", pkg, err)
	}
	if name != pkg {
		return verrel.Verrel{}, fmt.Errorf("koji returned %q for package %s", fields[0], pkg)
	}
	return vr, nil
}
