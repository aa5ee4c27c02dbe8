package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"machoda.com/macho-web/internal/menu"
	"machoda.com/macho-web/internal/richtext"
)

type showOptions struct {
	gender    string
	location  string
	frequency string
	asJSON    bool
}

func newShowCmd() *cobra.Command {
	var opts showOptions
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the program a selection resolves to",
		Example: `  programs show --gender male --type gym --freq 4
  programs show --gender female --type home --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := tableFromFlags(cmd, nil)
			if err != nil {
				return err
			}
			q := url.Values{}
			q.Set(menu.ParamGender, opts.gender)
			q.Set(menu.ParamLocation, opts.location)
			q.Set(menu.ParamFrequency, opts.frequency)
			sel, err := menu.ParseSelection(q)
			if err != nil {
				return err
			}
			res, ok := table.Resolve(sel)
			if !ok {
				return fmt.Errorf("selection %q is incomplete", sel.Encode())
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(map[string]any{
					"status":  res.Status(),
					"query":   sel.Encode(),
					"program": res.Program,
				})
			}
			writeProgram(cmd.OutOrStdout(), richtext.New(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.gender, "gender", "", "male or female")
	cmd.Flags().StringVar(&opts.location, "type", "", "gym or home")
	cmd.Flags().StringVar(&opts.frequency, "freq", "", "training days per week: 1-2, 3, 4, 5, 6 or 7")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func writeProgram(w io.Writer, rich *richtext.Renderer, res menu.Result) {
	if res.IsComingSoon() {
		fmt.Fprintln(w, "coming soon")
		return
	}
	p := res.Program
	fmt.Fprintln(w, p.Title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(p.Title))))
	for _, line := range p.Intro {
		fmt.Fprintln(w, rich.Plain(line))
	}
	for _, d := range p.Days {
		fmt.Fprintf(w, "\n%s\n", d.Title)
		for _, it := range d.Items {
			if it.Note != "" {
				fmt.Fprintf(w, "  - %s: %s (%s)\n", it.Name, it.Reps, rich.Plain(it.Note))
				continue
			}
			fmt.Fprintf(w, "  - %s: %s\n", it.Name, it.Reps)
		}
	}
	if len(p.Principles) > 0 {
		fmt.Fprintln(w)
		for _, line := range p.Principles {
			fmt.Fprintf(w, "* %s\n", rich.Plain(line))
		}
	}
}
