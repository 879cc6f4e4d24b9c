package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fedora-virt/copr-rebuild/internal/copr"
	"github.com/fedora-virt/copr-rebuild/internal/koji"
	"github.com/fedora-virt/copr-rebuild/internal/rebuild"
	"github.com/fedora-virt/copr-rebuild/internal/verrel"
)

var (
	configFile string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "copr-rebuild",
	Short:         "Rebuild Copr packages that fell behind koji rawhide",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	config, err := parseConfig(configFile)
	if err != nil {
		return fmt.Errorf("could not load config file '%s': %w", configFile, err)
	}
	catalog, err := config.catalog()
	if err != nil {
		return err
	}
	skipPatterns, err := config.skipChrootPatterns()
	if err != nil {
		return err
	}
	filter := rebuild.NewFilter(skipPatterns, catalog)

	coprClient := copr.New(config.Copr.APIURL, config.Copr.Owner, config.Copr.Project, config.SCM.CloneURLTemplate)

	builds, err := coprClient.Builds(ctx)
	if err != nil {
		return err
	}
	if copr.HasRunningBuild(builds) {
		return &rebuild.PreconditionError{
			Reason: fmt.Sprintf("%s/%s has a build in progress", config.Copr.Owner, config.Copr.Project),
		}
	}

	kojiClient := &koji.Client{Tag: config.Koji.Tag}
	latest := make(map[string]verrel.Verrel, len(catalog))
	for _, pkg := range catalog {
		vr, err := kojiClient.LatestBuild(ctx, pkg.Name)
		if err != nil {
			return &rebuild.PreconditionError{Reason: "koji query failed", Err: err}
		}
		logrus.Debugf("koji has %s %s", pkg.Name, vr)
		latest[pkg.Name] = vr
	}

	chroots, err := coprClient.ProjectChroots(ctx)
	if err != nil {
		return err
	}
	active := filter.Active(chroots)
	logrus.Debugf("active chroots: %v", active)

	stale, err := rebuild.Stale(catalog, latest, copr.BuiltVerrels(builds), active, filter)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		logrus.Info("everything is up to date, nothing to rebuild")
		return nil
	}

	orchestrator := &rebuild.Orchestrator{
		Catalog:   catalog,
		Builder:   coprClient,
		Countdown: time.Duration(config.Run.CountdownSeconds) * time.Second,
	}
	failed, err := orchestrator.Run(ctx, stale)
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to submit rebuilds for: %s", strings.Join(failed, ", "))
	}

	logrus.Info("all rebuilds submitted")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.Flags().StringVar(&configFile, "config", "/etc/copr-rebuild/config.toml", "path to the configuration file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
