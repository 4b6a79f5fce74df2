package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/service"
)

var (
	colorAvailable   = color.New(color.FgGreen)
	colorBooked      = color.New(color.FgBlue, color.Bold)
	colorUnavailable = color.New(color.FgRed)
	colorMuted       = color.New(color.FgHiBlack)
	colorHeader      = color.New(color.Bold)
)

type dayFlags struct {
	employee string
	date     string
}

func (f *dayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.employee, "employee", "e", "", "employee ID (required)")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "day to show as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("employee")
}

// resolve parses the date flag in the service's time zone.
func (f *dayFlags) resolve(svc *service.Service) (time.Time, error) {
	loc := svc.Location()
	if f.date == "" {
		return parse.TruncateToDay(svc.Now(), loc), nil
	}
	date, err := parse.Date(f.date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return date, nil
}

func newDayCmd(opts *globalOptions) *cobra.Command {
	var flags dayFlags
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Print an employee's merged day",
		Long: `Print an employee's merged day as a table of slots.

Example:
  scheduled day --employee emp-42 --date 2026-10-20`,
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
			view, err := svc.Day(commandContext(cmd), svc.Context(flags.employee, date))
			if err != nil {
				return err
			}
			renderDay(cmd.OutOrStdout(), view)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// renderDay writes one line per slot, colored by state.
func renderDay(w io.Writer, view *service.DayView) {
	title := fmt.Sprintf("%s  %s", view.EmployeeID, view.Date)
	if !view.Editable {
		title += "  (closed)"
	}
	fmt.Fprintln(w, colorHeader.Sprint(title))

	for _, s := range view.Slots {
		var state string
		switch {
		case s.Available:
			state = colorAvailable.Sprint(s.Display.Text)
		case s.Booked:
			state = colorBooked.Sprint(s.Display.Text)
		default:
			state = colorUnavailable.Sprint(s.Display.Text)
		}

		var detail []string
		if s.Booked && s.Person != "" {
			detail = append(detail, s.Person)
		}
		if s.Reason != "" {
			detail = append(detail, s.Reason)
		}
		if s.MeetingLink != "" {
			detail = append(detail, s.MeetingLink)
		}

		line := fmt.Sprintf("  %-8s  %s", s.Time, state)
		if len(detail) > 0 {
			line += "  " + strings.Join(detail, " · ")
		}
		if s.Past {
			line = colorMuted.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
