// inspect.go implements the "batchmaker inspect" command.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/berth-dev/batchmaker/internal/mat"
	"github.com/berth-dev/batchmaker/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mat>",
	Short: "Print the contents of a MAT-file as a tree",
	Long: `Decode a MAT-file and print its variables as a tree with classes and
dimensions. Use --path to print one node, for example

  batchmaker inspect batch.mat --path matlabbatch.spm.stats.fmri_spec.sess[0]

Indexes are 0-based; 1x1 cells are stepped through automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var pathFlag string

func init() {
	inspectCmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Dotted path of the node to print, starting with the variable name")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := mat.ReadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if pathFlag == "" {
		return ui.RenderVars(out, f.Vars, styled())
	}

	varName, rest := splitVarPath(pathFlag)
	v, ok := f.Get(varName)
	if !ok {
		return fmt.Errorf("%w: no variable %q in %s", mat.ErrNotFound, varName, args[0])
	}
	node, err := mat.Lookup(v, rest)
	if err != nil {
		return fmt.Errorf("%s: %w", pathFlag, err)
	}
	return ui.RenderValue(out, pathFlag, node, styled())
}

// splitVarPath separates the variable name from the rest of a path.
// "matlabbatch[0].spm" gives "matlabbatch" and "[0].spm".
func splitVarPath(path string) (string, string) {
	i := strings.IndexAny(path, ".[")
	if i < 0 {
		return path, ""
	}
	return path[:i], strings.TrimPrefix(path[i:], ".")
}
