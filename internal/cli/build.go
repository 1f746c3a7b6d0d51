// build.go implements the "batchmaker build" command.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/berth-dev/batchmaker/internal/config"
	"github.com/berth-dev/batchmaker/internal/design"
	"github.com/berth-dev/batchmaker/internal/history"
	"github.com/berth-dev/batchmaker/internal/log"
	"github.com/berth-dev/batchmaker/internal/mat"
	"github.com/berth-dev/batchmaker/internal/spm"
	"github.com/berth-dev/batchmaker/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build <design>",
	Short: "Build and export a batch from a design file",
	Long: `Load a YAML (.yaml/.yml) or HCL (.hcl) design file, build the
first-level model specification and write it to <name>.mat.

The name comes from --out, else the design's name, else "batch".
An existing file with the same name is overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

var (
	outFlag      string
	compressFlag bool
)

func init() {
	buildCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output name without the .mat extension")
	buildCmd.Flags().BoolVar(&compressFlag, "compress", false, "Write zlib-compressed variables")
}

func runBuild(cmd *cobra.Command, args []string) error {
	designPath := args[0]

	root, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(root)
	if err != nil {
		return err
	}
	logger := openLogger(root, cfg)

	start := time.Now()
	d, err := design.Load(designPath)
	if err != nil {
		return err
	}
	slog.Debug("design loaded", "path", designPath, "sessions", len(d.Sessions), "conditions", d.ConditionCount())
	record(logger, log.LogEvent{
		Event:      log.EventDesignLoaded,
		Design:     designPath,
		Sessions:   len(d.Sessions),
		Conditions: d.ConditionCount(),
		Warnings:   d.Warnings(),
	})

	batch, err := d.Batchfile()
	if err != nil {
		return fmt.Errorf("building batch: %w", err)
	}
	record(logger, log.LogEvent{
		Event:      log.EventBatchBuilt,
		Design:     designPath,
		Name:       d.Name,
		Sessions:   batch.Sessions(),
		Conditions: d.ConditionCount(),
	})

	name, err := outputName(root, cfg, d)
	if err != nil {
		return err
	}
	compressed := compressFlag || d.Compress || cfg.Export.Compress
	var opts []mat.Option
	if compressed {
		opts = append(opts, mat.WithCompression())
	}

	if err := batch.Export(name, opts...); err != nil {
		record(logger, log.LogEvent{
			Event:  log.EventExportFailed,
			Design: designPath,
			Name:   name,
			Error:  err.Error(),
		})
		return err
	}

	path := spm.Path(name)
	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}

	export := &history.Export{
		Name:       filepath.Base(name),
		Path:       path,
		Design:     designPath,
		Dir:        d.Dir,
		Sessions:   batch.Sessions(),
		Conditions: d.ConditionCount(),
		Compressed: compressed,
		Bytes:      size,
	}
	if cfg.History.Enabled {
		if err := recordHistory(root, export); err != nil {
			slog.Warn("recording export history", "error", err)
		}
	}

	record(logger, log.LogEvent{
		Event:      log.EventBatchExported,
		ExportID:   export.ID,
		Design:     designPath,
		Name:       export.Name,
		Path:       path,
		Sessions:   export.Sessions,
		Conditions: export.Conditions,
		Compressed: compressed,
		Bytes:      size,
		DurationMs: time.Since(start).Milliseconds(),
	})

	return ui.RenderSummary(cmd.OutOrStdout(), ui.Summary{
		Name:       export.Name,
		Path:       path,
		Dir:        d.Dir,
		Sessions:   export.Sessions,
		Conditions: export.Conditions,
		Bytes:      size,
		Compressed: compressed,
		Warnings:   d.Warnings(),
	}, styled())
}

// outputName resolves the export name against the configured output directory.
func outputName(root string, cfg *config.Config, d *design.Design) (string, error) {
	name := d.Name
	if outFlag != "" {
		name = outFlag
	}
	if filepath.IsAbs(name) {
		return name, nil
	}

	dir := root
	if cfg.Export.OutputDir != "" {
		dir = cfg.Export.OutputDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}
	return filepath.Join(dir, name), nil
}

func recordHistory(root string, e *history.Export) error {
	stateDir := filepath.Join(root, config.Dir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", config.Dir, err)
	}
	store, err := history.Open(stateDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Record(e)
}
