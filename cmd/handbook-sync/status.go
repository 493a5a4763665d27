// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/handbook-sync/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show files and runs recorded in the sync-state database",
	Long: `Status reads the SQLite database written by "sync --state-db" and lists
the last recorded outcome of every file, or the run history with --runs.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().String("state-db", "", "SQLite file written by sync --state-db")
	statusCmd.Flags().String("output-dir", "", "only list files under this output directory")
	statusCmd.Flags().Bool("runs", false, "list runs instead of files")
	statusCmd.Flags().Int("limit", 20, "maximum number of runs to list (0 = all)")
	statusCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("state-db")
	if dbPath == "" {
		dbPath = viper.GetString("state_db")
	}
	if dbPath == "" {
		return fmt.Errorf("no state database: pass --state-db or set state_db in the config file")
	}

	store, err := state.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if showRuns, _ := cmd.Flags().GetBool("runs"); showRuns {
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.Runs(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, runs)
		}
		formatRuns(out, runs)
		return nil
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	files, err := store.Files(cmd.Context(), outputDir)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, files)
	}
	formatFiles(out, files)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatRuns(w io.Writer, runs []state.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-7s  %-7s  %-7s  %s\n",
		"Run", "Started", "Created", "Updated", "Skipped", "Endpoint")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Fprintf(w, "%-5d  %-20s  %-7d  %-7d  %-7d  %s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Created, r.Updated, r.Skipped, r.Endpoint)
	}
}

func formatFiles(w io.Writer, files []state.File) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files recorded.")
		return
	}

	fmt.Fprintf(w, "%-8s  %-5s  %-12s  %s\n", "Outcome", "Run", "SHA256", "Path")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, f := range files {
		fmt.Fprintf(w, "%-8s  %-5d  %-12s  %s\n", f.Outcome, f.RunID, f.SHA256[:12], path.Join(f.OutputDir, f.Path))
	}
}
