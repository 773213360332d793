package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Togather-Foundation/planner/internal/client"
	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/spf13/cobra"
)

func newEventsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List, show and manage calendar events",
		Long: `Work with the event calendar over the API.

Listing, showing and the iCalendar feed are public. Creating, updating and
deleting need an administrator session (see 'server login').

Examples:
  server events list --start 2024-06-01 --end 2024-06-30
  server events show 01J0ABCDEF...
  server events create --title Picnic --date 2024-06-01 --start-time 12:00 --end-time 14:00
  server events update 01J0ABCDEF... --title "Picnic in the park"
  server events delete 01J0ABCDEF...
  server events ics --output planner.ics`,
	}

	cmd.AddCommand(
		newEventsListCommand(opts),
		newEventsShowCommand(opts),
		newEventsCreateCommand(opts),
		newEventsUpdateCommand(opts),
		newEventsDeleteCommand(opts),
		newEventsICSCommand(opts),
	)
	return cmd
}

type rangeFlags struct {
	start string
	end   string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "first day to include (YYYY-MM-DD or ISO datetime)")
	cmd.Flags().StringVar(&r.end, "end", "", "last day to include (YYYY-MM-DD or ISO datetime)")
}

func newEventsListCommand(opts *options) *cobra.Command {
	var (
		window     rangeFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			list, err := c.ListEvents(cmd.Context(), window.start, window.end)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSONOut(out, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No events.")
				return nil
			}
			for i, day := range client.GroupByDay(list) {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, day.Date)
				for _, e := range day.Events {
					fmt.Fprintf(out, "  %s-%s  %s  [%s]\n", clock(e.Start), clock(e.End), e.Title, e.ID)
					if len(e.Volunteers) > 0 {
						fmt.Fprintf(out, "      volunteers: %s\n", strings.Join(e.Volunteers, ", "))
					}
				}
			}
			return nil
		},
	}
	window.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the raw calendar entries as JSON")
	return cmd
}

func newEventsShowCommand(opts *options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			detail, err := c.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			if jsonOutput {
				return writeJSONOut(cmd.OutOrStdout(), detail)
			}
			printDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the event as JSON")
	return cmd
}

type eventFlags struct {
	title       string
	description string
	date        string
	startTime   string
	endTime     string
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "event title")
	cmd.Flags().StringVar(&f.description, "description", "", "event description")
	cmd.Flags().StringVar(&f.date, "date", "", "event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.startTime, "start-time", "", "start time (HH:MM, optional)")
	cmd.Flags().StringVar(&f.endTime, "end-time", "", "end time (HH:MM, optional)")
}

func (f *eventFlags) input() events.EventInput {
	return events.EventInput{
		Title:       f.title,
		Description: f.description,
		Date:        f.date,
		StartTime:   f.startTime,
		EndTime:     f.endTime,
	}
}

// overlay replaces the fields of current whose flags were set on cmd.
func (f *eventFlags) overlay(cmd *cobra.Command, current events.EventDetail) events.EventInput {
	in := events.EventInput{
		Title:       current.Title,
		Description: current.Description,
		Date:        current.Date,
		StartTime:   current.StartTime,
		EndTime:     current.EndTime,
	}
	changed := cmd.Flags().Changed
	if changed("title") {
		in.Title = f.title
	}
	if changed("description") {
		in.Description = f.description
	}
	if changed("date") {
		in.Date = f.date
	}
	if changed("start-time") {
		in.StartTime = f.startTime
	}
	if changed("end-time") {
		in.EndTime = f.endTime
	}
	return in
}

func newEventsCreateCommand(opts *options) *cobra.Command {
	var flags eventFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event (administrator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			created, err := c.CreateEvent(cmd.Context(), flags.input())
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q on %s [%s]\n", created.Title, created.Start, created.ID)
			return nil
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newEventsUpdateCommand(opts *options) *cobra.Command {
	var flags eventFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an event (administrator)",
		Long: `Update an event. Only the fields given as flags change; the rest keep
their current values. Pass an empty value (e.g. --end-time "") to clear an
optional field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			if !c.LoggedIn() {
				return describe(client.ErrNotLoggedIn)
			}
			current, err := c.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			updated, err := c.UpdateEvent(cmd.Context(), args[0], flags.overlay(cmd, current))
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q on %s [%s]\n", updated.Title, updated.Start, updated.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newEventsDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			if err := c.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newEventsICSCommand(opts *options) *cobra.Command {
	var (
		window rangeFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Download the calendar as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := c.CalendarFeed(cmd.Context(), window.start, window.end, w); err != nil {
				return describe(err)
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			}
			return nil
		},
	}
	window.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: stdout)")
	return cmd
}

func newVolunteerCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volunteer",
		Short: "Add or remove a volunteer name on an event",
		Long: `Volunteer for an event or withdraw. No login is needed. Adding a name that
is already on the roster changes nothing; removing a name removes every entry
with that name.`,
	}

	add := &cobra.Command{
		Use:   "add <event-id> <name>",
		Short: "Put a name on the roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			e, err := c.AddVolunteer(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			printRoster(cmd.OutOrStdout(), e)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <event-id> <name>",
		Short: "Take a name off the roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient(cmd, opts)
			if err != nil {
				return err
			}
			e, err := c.RemoveVolunteer(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			printRoster(cmd.OutOrStdout(), e)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func clock(iso string) string {
	_, t, ok := strings.Cut(iso, "T")
	if !ok {
		return iso
	}
	return t
}

func printDetail(out io.Writer, d events.EventDetail) {
	fmt.Fprintf(out, "ID:          %s\n", d.ID)
	fmt.Fprintf(out, "Title:       %s\n", d.Title)
	fmt.Fprintf(out, "Date:        %s\n", d.Date)
	if d.StartTime != "" || d.EndTime != "" {
		fmt.Fprintf(out, "Time:        %s-%s\n", d.StartTime, d.EndTime)
	} else {
		fmt.Fprintln(out, "Time:        all day")
	}
	if d.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", d.Description)
	}
}

func printRoster(out io.Writer, e events.CalendarEvent) {
	if len(e.Volunteers) == 0 {
		fmt.Fprintf(out, "%s: no volunteers yet\n", e.Title)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", e.Title, strings.Join(e.Volunteers, ", "))
}

func writeJSONOut(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
