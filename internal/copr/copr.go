// Package copr talks to a Copr project: build history and configured
// chroots over the api_3 REST interface, rebuild submission through
// copr-cli.
package copr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"sort"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/fedora-virt/copr-rebuild/internal/verrel"
)

// var alias for exec.CommandContext() that can be mocked for testing
var execCommand = exec.CommandContext

type Client struct {
	baseURL string
	owner   string
	project string

	cloneURLTemplate string

	client *http.Client
}

func New(baseURL, owner, project, cloneURLTemplate string) *Client {
	return &Client{
		baseURL:          baseURL,
		owner:            owner,
		project:          project,
		cloneURLTemplate: cloneURLTemplate,
		client:           retryablehttp.NewClient().StandardClient(),
	}
}

type SourcePackage struct {
	Name string `json:"name"`
	// Version carries release and, when the package has one, an epoch
	// prefix, e.g. "2:8.1.0-1.fc40".
	Version string `json:"version"`
}

type Build struct {
	ID            int64         `json:"id"`
	State         string        `json:"state"`
	Chroots       []string      `json:"chroots"`
	SourcePackage SourcePackage `json:"source_package"`
}

type buildListResponse struct {
	Items []Build `json:"items"`
}

type projectResponse struct {
	ChrootRepos map[string]string `json:"chroot_repos"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Builds returns the project's build history.
func (c *Client) Builds(ctx context.Context) ([]Build, error) {
	query := url.Values{
		"ownername":   []string{c.owner},
		"projectname": []string{c.project},
	}
	var list buildListResponse
	if err := c.get(ctx, "/api_3/build/list/", query, &list); err != nil {
		return nil, fmt.Errorf("listing builds for %s/%s: %w", c.owner, c.project, err)
	}
	return list.Items, nil
}

// ProjectChroots returns the chroot names configured for the project,
// sorted for deterministic iteration.
func (c *Client) ProjectChroots(ctx context.Context) ([]string, error) {
	query := url.Values{
		"ownername":   []string{c.owner},
		"projectname": []string{c.project},
	}
	var project projectResponse
	if err := c.get(ctx, "/api_3/project", query, &project); err != nil {
		return nil, fmt.Errorf("fetching project %s/%s: %w", c.owner, c.project, err)
	}

	chroots := make([]string, 0, len(project.ChrootRepos))
	for chroot := range project.ChrootRepos {
		chroots = append(chroots, chroot)
	}
	sort.Strings(chroots)
	return chroots, nil
}

// HasRunningBuild reports whether any build is still in flight. A run
// must not race an in-progress build.
func HasRunningBuild(builds []Build) bool {
	for _, build := range builds {
		switch build.State {
		case "pending", "starting", "importing", "running", "waiting":
			return true
		}
	}
	return false
}

// BuiltVerrels folds the build history into a chroot -> package -> verrel
// table holding the most recent succeeded build of each package per
// chroot.
func BuiltVerrels(builds []Build) map[string]map[string]verrel.Verrel {
	sorted := make([]Build, len(builds))
	copy(sorted, builds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	built := make(map[string]map[string]verrel.Verrel)
	for _, build := range sorted {
		if build.State != "succeeded" {
			continue
		}
		name := build.SourcePackage.Name
		if name == "" {
			continue
		}

		relIdx := lastDash(build.SourcePackage.Version)
		if relIdx < 1 {
			logrus.Debugf("build %d has malformed version %q, ignoring", build.ID, build.SourcePackage.Version)
			continue
		}
		vr := verrel.Verrel{
			Version: build.SourcePackage.Version[:relIdx],
			Release: build.SourcePackage.Version[relIdx+1:],
		}

		for _, chroot := range build.Chroots {
			if built[chroot] == nil {
				built[chroot] = make(map[string]verrel.Verrel)
			}
			if _, ok := built[chroot][name]; !ok {
				built[chroot][name] = vr
			}
		}
	}
	return built
}

func lastDash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '-' {
			return i
		}
	}
	return -1
}

// SubmitSCMBuild enqueues a source-control build of pkg for the given
// chroots. copr-cli reports enqueue success through its exit status;
// --nowait returns as soon as the build is accepted.
func (c *Client) SubmitSCMBuild(ctx context.Context, pkg string, chroots []string) error {
	args := []string{
		"buildscm",
		"--clone-url", fmt.Sprintf(c.cloneURLTemplate, pkg),
		"--nowait",
	}
	for _, chroot := range chroots {
		args = append(args, "-r", chroot)
	}
	args = append(args, fmt.Sprintf("%s/%s", c.owner, c.project))

	cmd := execCommand(ctx, "copr-cli", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("copr-cli buildscm %s failed: %w: %s", pkg, err, output)
	}
	return nil
}
