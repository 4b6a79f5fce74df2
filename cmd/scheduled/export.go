package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/ics"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		flags dayFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an employee's busy slots as iCalendar",
		Long: `Export the meetings and unavailable blocks of one day as an .ics file.

Example:
  scheduled export --employee emp-42 --date 2026-10-20 --out day.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := wire(opts)
			if err != nil {
				return err
			}
			defer c.Close()

			svc := c.service(nil)
			date, err := flags.resolve(svc)
			if err != nil {
				return err
			}
			day, err := svc.Calendar(commandContext(cmd), svc.Context(flags.employee, date))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return ics.Encode(w, day)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
