package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Parse a program table and list combinations without a program",
		Long: `Parse a program table and report every selectable combination that
resolves to the coming-soon notice. With --strict any such combination fails
the command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, source, err := tableFromFlags(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pending := table.Pending()
			fmt.Fprintf(out, "%s: ok\n", source)
			for _, c := range pending {
				fmt.Fprintf(out, "coming soon: %s\n", c.Selection().Encode())
			}
			if strict && len(pending) > 0 {
				return fmt.Errorf("%d combination(s) without a program", len(pending))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a selectable combination has no program")
	return cmd
}
