// history.go implements the "batchmaker history" command listing and pruning
// recorded exports.
package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/berth-dev/batchmaker/internal/config"
	"github.com/berth-dev/batchmaker/internal/history"
	"github.com/berth-dev/batchmaker/internal/log"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded exports",
	Long: `List the batches exported from this project, newest first.

Use --prune to delete records older than history.max_age_days from
.batchmaker/config.yaml, or --prune-days N to pick the age. Pruning only
removes history records; exported files are left in place.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	limitFlag     int
	pruneFlag     bool
	pruneDaysFlag int
)

func init() {
	historyCmd.Flags().IntVar(&limitFlag, "limit", 20, "Number of exports to show")
	historyCmd.Flags().BoolVar(&pruneFlag, "prune", false, "Delete records older than the configured max age")
	historyCmd.Flags().IntVar(&pruneDaysFlag, "prune-days", 0, "Delete records older than N days")
}

func runHistory(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(root)
	if err != nil {
		return err
	}

	store, err := history.Open(filepath.Join(root, config.Dir))
	if err != nil {
		return fmt.Errorf("opening history (run 'batchmaker init' first?): %w", err)
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	if pruneFlag || pruneDaysFlag > 0 {
		days := pruneDaysFlag
		if days <= 0 {
			days = cfg.History.MaxAgeDays
		}
		if days <= 0 {
			return fmt.Errorf("no prune age: set history.max_age_days or pass --prune-days")
		}

		n, err := store.PruneOlderThan(time.Now().AddDate(0, 0, -days))
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		record(openLogger(root, cfg), log.LogEvent{
			Event:  log.EventHistoryPruned,
			Pruned: n,
			Data:   map[string]interface{}{"max_age_days": days},
		})
		fmt.Fprintf(out, "Removed %d record(s) older than %d days.\n", n, days)
		return nil
	}

	exports, err := store.List(limitFlag)
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		fmt.Fprintln(out, "No exports recorded; build one with: batchmaker build <design>")
		return nil
	}

	for _, e := range exports {
		fmt.Fprintf(out, "  %s  %-20s  %2d sess  %3d cond  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Name, e.Sessions, e.Conditions, e.Path)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%d export(s) shown\n", len(exports))

	return nil
}
