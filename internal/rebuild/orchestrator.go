package rebuild

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Builder submits a rebuild of one package for a set of chroots. The
// submission is enqueue-only; build completion is not tracked here.
type Builder interface {
	SubmitSCMBuild(ctx context.Context, pkg string, chroots []string) error
}

// Orchestrator walks the catalog in order and submits a rebuild for every
// stale package.
type Orchestrator struct {
	Catalog   []Package
	Builder   Builder
	Countdown time.Duration
}

// Run reports the stale set, waits out the cancellation window and then
// submits the rebuilds. Cancelling ctx during the window aborts before
// any submission. Submission failures do not stop the iteration; the
// names of failed packages are returned in catalog order.
func (o *Orchestrator) Run(ctx context.Context, stale map[string][]string) ([]string, error) {
	for _, pkg := range o.Catalog {
		if chroots, ok := stale[pkg.Name]; ok {
			logrus.Infof("%s is stale in: %v", pkg.Name, chroots)
		}
	}

	if err := o.countdown(ctx); err != nil {
		return nil, err
	}

	var failed []string
	for _, pkg := range o.Catalog {
		chroots, ok := stale[pkg.Name]
		if !ok {
			continue
		}
		if pkg.Skip {
			logrus.Infof("skipping %s, marked as never rebuilt", pkg.Name)
			continue
		}

		logrus.Infof("submitting rebuild of %s for %v", pkg.Name, chroots)
		if err := o.Builder.SubmitSCMBuild(ctx, pkg.Name, chroots); err != nil {
			logrus.Errorf("submitting rebuild of %s failed: %v", pkg.Name, err)
			failed = append(failed, pkg.Name)
		}
	}

	return failed, nil
}

func (o *Orchestrator) countdown(ctx context.Context) error {
	remaining := int(o.Countdown / time.Second)
	if remaining <= 0 {
		return nil
	}

	logrus.Infof("submitting rebuilds in %d seconds, interrupt to abort", remaining)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for remaining > 0 {
		select {
		case <-ctx.Done():
			logrus.Info("interrupted, no rebuilds submitted")
			return ctx.Err()
		case <-ticker.C:
			remaining--
		}
	}
	return nil
}
