package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AnthonySaldana/nujob/internal/application/port/input"
	"github.com/AnthonySaldana/nujob/internal/di"
	"github.com/AnthonySaldana/nujob/internal/domain/entity"
	"github.com/AnthonySaldana/nujob/internal/infrastructure/env"
)

type applyOptions struct {
	profile   string
	sites     string
	artifacts string
	headless  bool
	dryRun    bool
	parallel  int
	verbose   bool
}

func newApplyCmd() *cobra.Command {
	opts := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply URL [URL...]",
		Short: "Fill and submit the application form behind each job URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.profile, "profile", "", "applicant profile file, YAML or JSON (default: embedded sample)")
	f.StringVar(&opts.sites, "sites", "", "YAML file with extra site adapters")
	f.StringVar(&opts.artifacts, "artifacts", "", "directory for screenshots")
	f.BoolVar(&opts.headless, "headless", false, "run the browser without a window")
	f.BoolVar(&opts.dryRun, "dry-run", false, "fill the form but do not submit it")
	f.IntVarP(&opts.parallel, "parallel", "p", 1, "number of applications run at once")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "also log to stderr")
	return cmd
}

func runApply(cmd *cobra.Command, opts *applyOptions, urls []string) error {
	cfg := configFromEnv(env.NewEnvService())
	cfg.LogName = "apply"
	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.ProfilePath = opts.profile
	}
	if flags.Changed("sites") {
		cfg.SitesPath = opts.sites
	}
	if flags.Changed("artifacts") {
		cfg.ArtifactDir = opts.artifacts
	}
	if flags.Changed("headless") {
		cfg.BrowserHeadless = opts.headless
	}
	cfg.DryRun = opts.dryRun
	cfg.UniqueArtifacts = opts.parallel > 1
	if opts.verbose {
		cfg.Console = cmd.ErrOrStderr()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer container.Close()

	profile, err := container.Profiles.Load(ctx)
	if err != nil {
		return err
	}

	results := runBatch(ctx, container.Applier, urls, profile, opts.parallel)
	failed := printResults(cmd.OutOrStdout(), results)
	if failed > 0 {
		return fmt.Errorf("%d of %d applications failed", failed, len(results))
	}
	return nil
}

// runBatch applies to every URL with at most parallel runs at once. Results
// keep the order of urls; a failed run never stops the others.
func runBatch(ctx context.Context, applier input.Applier, urls []string, profile *entity.ApplicantProfile, parallel int) []*entity.RunResult {
	if parallel < 1 {
		parallel = 1
	}

	results := make([]*entity.RunResult, len(urls))
	var g errgroup.Group
	g.SetLimit(parallel)

	for i, u := range urls {
		g.Go(func() error {
			res, err := applier.Apply(ctx, u, profile)
			if res == nil {
				res = &entity.RunResult{URL: u, Status: entity.RunFailed}
				if err == nil {
					err = errors.New("no result")
				}
			}
			if err != nil && res.Error == "" {
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func printResults(w io.Writer, results []*entity.RunResult) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSITE\tFILLED\tSKIPPED\tFAILED\tSUBMITTED\tURL")

	failed := 0
	for _, r := range results {
		status := string(r.Status)
		if r.Degraded {
			status += " (degraded)"
		}
		if r.Status != entity.RunCompleted {
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%t\t%s\n",
			status, r.Site, r.Report.Attempted, r.Report.Skipped, r.Report.Failed, r.Submitted, r.URL)
	}
	tw.Flush()

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "\n%s\n  error: %s\n", r.URL, r.Error)
		}
		if r.Screenshot != "" {
			fmt.Fprintf(w, "\n%s\n  screenshot: %s\n", r.URL, r.Screenshot)
		}
	}
	return failed
}
