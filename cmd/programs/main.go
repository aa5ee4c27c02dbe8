// Command programs inspects the training program table: it validates a table asset
// and prints the program a selection resolves to.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"machoda.com/macho-web/internal/menu"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "programs",
		Short:        "Inspect the training program table",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("file", "", "program table YAML (defaults to the embedded table)")
	root.AddCommand(newValidateCmd())
	root.AddCommand(newShowCmd())
	return root
}

func tableFromFlags(cmd *cobra.Command, args []string) (*menu.Table, string, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, "", err
	}
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		t, err := menu.DefaultTable()
		if err != nil {
			return nil, "", fmt.Errorf("embedded table: %w", err)
		}
		return t, "embedded", nil
	}
	t, err := menu.LoadTableFile(path)
	if err != nil {
		return nil, "", err
	}
	return t, path, nil
}
