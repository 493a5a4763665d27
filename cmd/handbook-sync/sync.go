// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/handbook-sync/internal/fetch"
	"github.com/pdiddy/handbook-sync/internal/handbook"
	"github.com/pdiddy/handbook-sync/internal/httputil"
	"github.com/pdiddy/handbook-sync/internal/state"
	"github.com/pdiddy/handbook-sync/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "handbook-sync/0.1"
)

var syncCmd = &cobra.Command{
	Use:   "sync [handbook]",
	Short: "Fetch a handbook and write it as markdown files",
	Long: `Sync fetches every page of a handbook collection, converts each page to
markdown, and writes it under the output directory. Unchanged files are
skipped. With --regenerate the output directory is removed first.

The handbook name may be given as an argument, a flag, or a config key.
With --all, every job listed under "handbooks:" in the config file runs in
order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

// syncFlags maps viper keys to the flags that override them.
var syncFlags = map[string]string{
	"handbook":   "handbook",
	"team":       "team",
	"subdomain":  "subdomain",
	"output_dir": "output-dir",
	"regenerate": "regenerate",
	"base_url":   "base-url",
	"timeout":    "timeout",
	"user_agent": "user-agent",
	"rate":       "rate",
	"state_db":   "state-db",
	"report":     "report",
}

func init() {
	f := syncCmd.Flags()
	f.String("handbook", types.DefaultHandbook, "handbook collection name")
	f.StringP("team", "t", "", "team path segment (e.g. core); empty for none")
	f.StringP("subdomain", "s", types.DefaultSubdomain, `wordpress.org subdomain; "w.org" for the bare host`)
	f.StringP("output-dir", "o", types.DefaultOutputDir, "directory that receives the markdown files")
	f.BoolP("regenerate", "r", false, "remove the output directory before syncing")
	f.String("base-url", "", "override scheme and host of the API and page links")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.String("user-agent", defaultUserAgent, "User-Agent header for API requests")
	f.Float64("rate", 0, "maximum page requests per second (0 = unlimited)")
	f.String("state-db", "", "SQLite file recording sync state (empty disables)")
	f.String("report", "", "write a YAML run report to this file")
	f.Bool("all", false, `sync every job listed under "handbooks:" in the config file`)

	for key, flag := range syncFlags {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	base := configFromViper()
	if len(args) == 1 {
		base.Handbook = args[0]
	}

	jobs := []types.SyncConfig{base}
	if all, _ := cmd.Flags().GetBool("all"); all {
		var err error
		if jobs, err = configuredJobs(base); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var results []handbook.Result
	for i, job := range jobs {
		if len(jobs) > 1 {
			fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(jobs), fetch.Endpoint(job))
		}
		res, err := syncJob(ctx, job, out)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if base.ReportPath == "" {
		return nil
	}
	if len(results) == 1 {
		return handbook.WriteReport(results[0], base.ReportPath)
	}
	return handbook.WriteReport(results, base.ReportPath)
}

func syncJob(ctx context.Context, cfg types.SyncConfig, w io.Writer) (handbook.Result, error) {
	cfg = cfg.WithDefaults()
	client := httputil.NewClient(&http.Client{Timeout: cfg.Timeout}, cfg.HTTPConfig)
	s := handbook.New(fetch.New(client))

	if cfg.StateDB != "" {
		store, err := state.Open(cfg.StateDB)
		if err != nil {
			return handbook.Result{}, err
		}
		defer store.Close()
		s.Recorder = store
	}

	return s.Sync(ctx, cfg, w)
}

// configFromViper reads the default job from flags, environment, and the
// config file, in viper's precedence order.
func configFromViper() types.SyncConfig {
	return types.SyncConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:           viper.GetDuration("timeout"),
			UserAgent:         viper.GetString("user_agent"),
			RequestsPerSecond: viper.GetFloat64("rate"),
		},
		Team:       viper.GetString("team"),
		Handbook:   viper.GetString("handbook"),
		Subdomain:  viper.GetString("subdomain"),
		BaseURL:    viper.GetString("base_url"),
		OutputDir:  viper.GetString("output_dir"),
		Regenerate: viper.GetBool("regenerate"),
		StateDB:    viper.GetString("state_db"),
		ReportPath: viper.GetString("report"),
	}
}

// configuredJobs decodes the "handbooks" list. Unset HTTP settings, the
// state database, and the subdomain are inherited from base. A job without
// its own output directory writes to <output_dir>/<handbook>.
func configuredJobs(base types.SyncConfig) ([]types.SyncConfig, error) {
	var jobs []types.SyncConfig
	if err := viper.UnmarshalKey("handbooks", &jobs); err != nil {
		return nil, fmt.Errorf("reading handbooks from config: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf(`--all needs a "handbooks:" list in the config file`)
	}
	for i := range jobs {
		jobs[i] = inherit(jobs[i], base)
	}
	if err := checkOutputDirs(jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// checkOutputDirs rejects jobs that would write into the same directory.
func checkOutputDirs(jobs []types.SyncConfig) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		job = job.WithDefaults()
		dir := filepath.Clean(job.OutputDir)
		if prev, ok := seen[dir]; ok {
			return fmt.Errorf("handbooks %q and %q both write to %s", prev, job.Handbook, dir)
		}
		seen[dir] = job.Handbook
	}
	return nil
}

func inherit(job, base types.SyncConfig) types.SyncConfig {
	if job.Timeout == 0 {
		job.Timeout = base.Timeout
	}
	if job.UserAgent == "" {
		job.UserAgent = base.UserAgent
	}
	if job.RequestsPerSecond == 0 {
		job.RequestsPerSecond = base.RequestsPerSecond
	}
	if job.Subdomain == "" {
		job.Subdomain = base.Subdomain
	}
	if job.BaseURL == "" {
		job.BaseURL = base.BaseURL
	}
	if job.StateDB == "" {
		job.StateDB = base.StateDB
	}
	if job.OutputDir == "" {
		name := job.Handbook
		if name == "" {
			name = types.DefaultHandbook
		}
		dir := base.OutputDir
		if dir == "" {
			dir = types.DefaultOutputDir
		}
		job.OutputDir = filepath.Join(dir, name)
	}
	return job
}
