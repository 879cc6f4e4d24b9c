package main

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/fedora-virt/copr-rebuild/internal/rebuild"
)

type coprConfig struct {
	APIURL  string `toml:"api_url"`
	Owner   string `toml:"owner"`
	Project string `toml:"project"`
}

type kojiConfig struct {
	Tag string `toml:"tag"`
}

type scmConfig struct {
	CloneURLTemplate string `toml:"clone_url_template"`
}

type runConfig struct {
	CountdownSeconds int `toml:"countdown_seconds"`
}

type packageConfig struct {
	Name           string   `toml:"name"`
	Skip           bool     `toml:"skip"`
	ExcludeChroots []string `toml:"exclude_chroots"`
}

type rebuildConfig struct {
	Copr        coprConfig      `toml:"copr"`
	Koji        kojiConfig      `toml:"koji"`
	SCM         scmConfig       `toml:"scm"`
	Run         runConfig       `toml:"run"`
	SkipChroots []string        `toml:"skip_chroots"`
	Packages    []packageConfig `toml:"package"`
}

func parseConfig(file string) (*rebuildConfig, error) {
	// set defaults
	config := rebuildConfig{
		Copr: coprConfig{
			APIURL: "https://copr.fedorainfracloud.org",
		},
		Koji: kojiConfig{
			Tag: "rawhide",
		},
		SCM: scmConfig{
			CloneURLTemplate: "https://src.fedoraproject.org/rpms/%s.git",
		},
		Run: runConfig{
			CountdownSeconds: 30,
		},
	}

	_, err := toml.DecodeFile(file, &config)
	if err != nil {
		return nil, err
	}

	if config.Copr.Owner == "" || config.Copr.Project == "" {
		return nil, fmt.Errorf("copr owner and project must be configured")
	}
	if len(config.Packages) == 0 {
		return nil, fmt.Errorf("no packages configured")
	}
	if config.Run.CountdownSeconds < 0 {
		return nil, fmt.Errorf("invalid countdown: %d", config.Run.CountdownSeconds)
	}

	return &config, nil
}

// catalog compiles the [[package]] tables, in file order, into the
// rebuild catalog.
func (c *rebuildConfig) catalog() ([]rebuild.Package, error) {
	catalog := make([]rebuild.Package, 0, len(c.Packages))
	for _, pkg := range c.Packages {
		if pkg.Name == "" {
			return nil, fmt.Errorf("package entry without a name")
		}
		excludes, err := compilePatterns(pkg.ExcludeChroots)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Name, err)
		}
		catalog = append(catalog, rebuild.Package{
			Name:           pkg.Name,
			Skip:           pkg.Skip,
			ExcludeChroots: excludes,
		})
	}
	return catalog, nil
}

func (c *rebuildConfig) skipChrootPatterns() ([]*regexp.Regexp, error) {
	return compilePatterns(c.SkipChroots)
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid chroot pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
