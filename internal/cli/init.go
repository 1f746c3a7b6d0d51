// init.go implements the "batchmaker init" command.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/berth-dev/batchmaker/internal/config"
	"github.com/berth-dev/batchmaker/templates"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize batchmaker in the current project",
	Long: `Create the .batchmaker/ directory with its configuration and write a
starter design file (design.yaml, or design.hcl with --hcl).
Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	hclFlag   bool
	forceFlag bool
)

func init() {
	initCmd.Flags().BoolVar(&hclFlag, "hcl", false, "Write an HCL starter design instead of YAML")
	initCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite existing configuration and design files")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	configPath := filepath.Join(root, config.Dir, "config.yaml")
	if forceFlag || !exists(configPath) {
		if err := config.WriteConfig(root, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(config.Dir, "config.yaml"))
	} else {
		fmt.Fprintf(out, "Kept existing %s\n", filepath.Join(config.Dir, "config.yaml"))
	}

	name, body := "design.yaml", templates.DesignYAML
	if hclFlag {
		name, body = "design.hcl", templates.DesignHCL
	}
	designPath := filepath.Join(root, name)
	if !forceFlag && exists(designPath) {
		fmt.Fprintf(out, "Kept existing %s\n", name)
		return nil
	}
	if err := os.WriteFile(designPath, []byte(body), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", name)
	fmt.Fprintf(out, "Edit it, then run: batchmaker build %s\n", name)

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
