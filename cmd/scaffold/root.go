package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/systemstart/many-scaffold/pkg/api"
	"github.com/systemstart/many-scaffold/pkg/logging"
	"github.com/systemstart/many-scaffold/pkg/processing"
	"github.com/systemstart/many-scaffold/pkg/steps"
)

type runFlags struct {
	target            string
	dryRun            bool
	continueOnError   bool
	stepTimeout       time.Duration
	set               []string
	substitutionsFile string
	diff              bool
	reportFile        string
	instancesFile     string
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var (
		loggingType string
		logLevel    string
		flags       runFlags
	)

	cmd := &cobra.Command{
		Use:   "scaffold RECIPE --target DIR",
		Short: "Apply a recipe of file edits and generator runs to a project",
		Long: `scaffold applies a recipe to an already generated project skeleton.

A recipe is an ordered list of steps: copy, remove, render, inject-after,
inject-before, generator, shell, directory, create, prepend, append, replace,
tree and message. Steps run strictly in order. There is no rollback: a failed
step leaves earlier changes in place.

RECIPE is a recipe file or a directory containing recipe.yaml.`,
		Example: `  # Apply a recipe to a fresh Rails app
  scaffold recipes/rails --target ./acme --set app_name=acme

  # Show what would happen
  scaffold recipes/rails --target ./acme --dry-run

  # Apply to every project listed in an instances file
  scaffold recipes/rails --instances projects.yaml`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logging.Initialize(loggingType, logLevel); err != nil {
				return exitWith(exitLoggingSetupFailed, "failed to initialize logging", err)
			}
			return includeEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipe(cmd, stdout, args[0], flags)
		},
	}

	cmd.SetOut(stdout)

	pf := cmd.PersistentFlags()
	pf.StringVar(&loggingType, "logging-type", logging.Tint,
		"logging type: "+strings.Join(logging.Types, ", "))
	pf.StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")

	f := cmd.Flags()
	f.StringVarP(&flags.target, "target", "t", "", "project directory the recipe is applied to")
	f.BoolVar(&flags.dryRun, "dry-run", false, "report the intended actions without changing anything")
	f.BoolVar(&flags.continueOnError, "continue-on-error", false, "keep running after a failed step")
	f.DurationVar(&flags.stepTimeout, "step-timeout", 0, "default timeout per step (0 = none)")
	f.StringArrayVar(&flags.set, "set", nil, "substitution key=value (repeatable, overrides everything else)")
	f.StringVar(&flags.substitutionsFile, "substitutions", "", "YAML file with substitutions")
	f.BoolVar(&flags.diff, "diff", false, "show a unified diff of every change")
	f.StringVar(&flags.reportFile, "report", "", "write the run report as YAML to this file")
	f.StringVar(&flags.instancesFile, "instances", "", "YAML file listing several targets")
	cmd.MarkFlagsMutuallyExclusive("target", "instances")

	cmd.AddCommand(newValidateCommand(stdout))
	cmd.AddCommand(newListCommand(stdout))

	return cmd
}

func runRecipe(cmd *cobra.Command, stdout io.Writer, recipeArg string, flags runFlags) error {
	if flags.target == "" && flags.instancesFile == "" {
		return exitWith(exitUsage, "--target or --instances is required", nil)
	}

	recipe, err := loadRecipe(recipeArg)
	if err != nil {
		return err
	}

	subs, err := collectSubstitutions(flags)
	if err != nil {
		return err
	}

	opts := processing.Options{
		ContinueOnError: flags.continueOnError,
		DryRun:          flags.dryRun,
		StepTimeout:     flags.stepTimeout,
		Diff:            flags.diff,
		Substitutions:   subs,
	}

	if flags.instancesFile != "" {
		return runInstances(cmd, stdout, recipe, flags, opts)
	}

	report, err := processing.Run(cmd.Context(), recipe, flags.target, opts)
	if err != nil {
		return exitWith(exitTargetCheckFailed, "cannot run recipe", err)
	}

	printSummary(stdout, report, flags.diff)

	if flags.reportFile != "" {
		if err := processing.WriteReport(flags.reportFile, report); err != nil {
			return exitWith(exitWriteReportFailed, "failed to write report", err)
		}
	}

	if !report.Succeeded() {
		return exitWith(exitStepsFailed, "steps failed", nil)
	}
	slog.Info("done")
	return nil
}

func runInstances(cmd *cobra.Command, stdout io.Writer, recipe *steps.Recipe, flags runFlags, opts processing.Options) error {
	cfg, err := api.LoadInstances(flags.instancesFile)
	if err != nil {
		return exitWith(exitLoadInstancesFailed, "failed to load instances file", err)
	}

	baseDir := filepath.Dir(flags.instancesFile)
	reports, runErr := processing.RunInstances(cmd.Context(), recipe, cfg, baseDir, opts)

	for _, r := range reports {
		printSummary(stdout, r, flags.diff)
	}

	if flags.reportFile != "" {
		if err := writeReports(flags.reportFile, reports); err != nil {
			return exitWith(exitWriteReportFailed, "failed to write report", err)
		}
	}

	if runErr != nil {
		return exitWith(exitInstancesFailed, "instances failed", runErr)
	}
	slog.Info("done", "instances", len(reports))
	return nil
}

// writeReports writes one report file per instance, suffixed with the
// instance's position.
func writeReports(filename string, reports []*processing.Report) error {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i, r := range reports {
		if err := processing.WriteReport(fmt.Sprintf("%s-%d%s", stem, i+1, ext), r); err != nil {
			return err
		}
	}
	return nil
}

func loadRecipe(arg string) (*steps.Recipe, error) {
	st, err := os.Stat(arg)
	if err != nil {
		return nil, exitWith(exitLoadRecipeFailed, "failed to check recipe", err)
	}

	cfg, err := api.LoadRecipe(processing.ResolveRecipePath(arg, st.IsDir()))
	if err != nil {
		return nil, exitWith(exitLoadRecipeFailed, "failed to load recipe", err)
	}

	recipe, err := steps.Compile(cfg)
	if err != nil {
		return nil, exitWith(exitLoadRecipeFailed, "invalid recipe", err)
	}
	if err := recipe.Validate(); err != nil {
		return nil, exitWith(exitLoadRecipeFailed, "invalid recipe", err)
	}
	return recipe, nil
}

// collectSubstitutions layers SCAFFOLD_* environment variables, the
// substitutions file and --set flags, later layers winning. The recipe's own
// substitutions sit below all of them.
func collectSubstitutions(flags runFlags) (map[string]string, error) {
	var fileSubs map[string]string
	if flags.substitutionsFile != "" {
		var err error
		fileSubs, err = processing.LoadSubstitutionsFile(flags.substitutionsFile)
		if err != nil {
			return nil, exitWith(exitLoadSubstitutionsFailed, "failed to load substitutions", err)
		}
	}

	setSubs, err := processing.ParseAssignments(flags.set)
	if err != nil {
		return nil, exitWith(exitUsage, "invalid --set", err)
	}

	return processing.MergeSubstitutions(processing.EnvSubstitutions(os.Environ()), fileSubs, setSubs), nil
}

func newValidateCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate RECIPE",
		Short: "Check a recipe and list its steps without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			recipe, err := loadRecipe(args[0])
			if err != nil {
				return err
			}
			printPlan(stdout, recipe)
			return nil
		},
	}
}

func newListCommand(stdout io.Writer) *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "list [DIR]",
		Short: "List the recipes found below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			recipes, err := processing.DiscoverRecipes(dir, maxDepth)
			if err != nil {
				return exitWith(exitLoadRecipeFailed, "failed to discover recipes", err)
			}
			if len(recipes) == 0 {
				slog.Warn("no recipes found", "dir", dir, "file", processing.RecipeFilename)
				return nil
			}
			printRecipes(stdout, recipes)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", -1, "max directory recursion depth (-1 = unlimited, 0 = root only)")
	return cmd
}
