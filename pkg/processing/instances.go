package processing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/steps"
)

// RunInstances applies recipe to every instance target in turn. Relative
// targets are resolved against baseDir. Instance substitutions override
// opts.Substitutions. An instance whose target is unusable or whose run has
// failed steps does not stop the others.
func RunInstances(ctx context.Context, recipe *steps.Recipe, cfg *api.InstancesConfig, baseDir string, opts Options) ([]*Report, error) {
	var (
		reports []*Report
		failed  []string
	)

	for _, inst := range cfg.Instances {
		slog.Info("processing instance", "name", inst.Name)

		report, err := runInstance(ctx, recipe, inst, baseDir, opts)
		if err != nil {
			slog.Error("instance failed", "name", inst.Name, "error", err)
			failed = append(failed, inst.Name)
			continue
		}

		reports = append(reports, report)
		if !report.Succeeded() {
			slog.Error("instance failed", "name", inst.Name, "failedSteps", len(report.Failed()))
			failed = append(failed, inst.Name)
		}
	}

	if len(failed) > 0 {
		return reports, fmt.Errorf("%d instance(s) failed: %v", len(failed), failed)
	}

	return reports, nil
}

func runInstance(ctx context.Context, recipe *steps.Recipe, inst api.Instance, baseDir string, opts Options) (*Report, error) {
	target := inst.Target
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, target)
	}

	instOpts := opts
	instOpts.Substitutions = MergeSubstitutions(opts.Substitutions, inst.Substitutions)

	return Run(ctx, recipe, target, instOpts)
}
