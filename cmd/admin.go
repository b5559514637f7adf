package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/International-Combat-Archery-Alliance/event-checkin/confirm"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const cliTimeFormat = "2006-01-02 15:04"

var errNeedsTerminal = errors.New("confirmation needs an interactive terminal, pass --yes to skip it")

// confirmer asks on the terminal unless --yes was given.
func (a *app) confirmer(cmd *cobra.Command, yes bool) (events.Confirmer, error) {
	catalog, err := a.loadCatalog(cmd.Context())
	if err != nil {
		return nil, err
	}

	if yes {
		return confirm.NewDialog(catalog, confirm.AutoPrompter(true)), nil
	}

	if f, ok := a.in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return nil, errNeedsTerminal
	}

	return confirm.NewDialog(catalog, confirm.NewTerminalPrompter(a.in, cmd.OutOrStdout())), nil
}

func reportOutcome(out io.Writer, done bool, what string) {
	if done {
		fmt.Fprintf(out, "%s\n", what)
		return
	}
	fmt.Fprintln(out, "Cancelled, nothing was changed")
}

func parseIDArg(name string, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q is not a UUID: %w", name, value, err)
	}
	return id, nil
}

func newEventCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events",
	}

	var name, start, end, venue string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime, err := time.ParseInLocation(cliTimeFormat, start, time.Local)
			if err != nil {
				return fmt.Errorf("--start must look like %q: %w", cliTimeFormat, err)
			}
			endTime, err := time.ParseInLocation(cliTimeFormat, end, time.Local)
			if err != nil {
				return fmt.Errorf("--end must look like %q: %w", cliTimeFormat, err)
			}

			var venueID uuid.UUID
			if venue != "" {
				if venueID, err = parseIDArg("venue", venue); err != nil {
					return err
				}
			}

			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}

			event, err := events.CreateEvent(cmd.Context(), repo, events.Event{
				Name:      name,
				VenueID:   venueID,
				StartTime: startTime,
				EndTime:   endTime,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), event.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "event name")
	createCmd.Flags().StringVar(&start, "start", "", "start time, "+cliTimeFormat)
	createCmd.Flags().StringVar(&end, "end", "", "end time, "+cliTimeFormat)
	createCmd.Flags().StringVar(&venue, "venue", "", "venue ID")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("start")
	createCmd.MarkFlagRequired("end")

	var yes bool
	disableCmd := &cobra.Command{
		Use:   "disable <eventId>",
		Short: "Stop issuing tickets and accepting check-ins for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("event", args[0])
			if err != nil {
				return err
			}

			confirmer, err := a.confirmer(cmd, yes)
			if err != nil {
				return err
			}

			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}

			done, err := events.DisableEvent(cmd.Context(), repo, confirmer, id)
			if err != nil {
				return err
			}

			reportOutcome(cmd.OutOrStdout(), done, "Event disabled")
			return nil
		},
	}
	disableCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(createCmd, disableCmd)
	return cmd
}

// parseArea reads "name" or "name:capacity".
func parseArea(s string) (events.Area, error) {
	name, capacity, found := strings.Cut(s, ":")
	area := events.Area{Name: strings.TrimSpace(name)}
	if !found {
		return area, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(capacity))
	if err != nil {
		return events.Area{}, fmt.Errorf("area %q has an invalid capacity: %w", s, err)
	}
	area.Capacity = n
	return area, nil
}

func newVenueCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venue",
		Short: "Manage venues",
	}

	var name string
	var address events.Address
	var areas []string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a venue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			venue := events.Venue{Name: name, Address: address}
			for _, s := range areas {
				area, err := parseArea(s)
				if err != nil {
					return err
				}
				venue.Areas = append(venue.Areas, area)
			}

			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}

			created, err := events.CreateVenue(cmd.Context(), repo, venue)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, created.ID)
			for _, area := range created.Areas {
				fmt.Fprintf(out, "  %s  %s\n", area.ID, area.Name)
			}
			return nil
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "venue name")
	createCmd.Flags().StringVar(&address.Street, "street", "", "street address")
	createCmd.Flags().StringVar(&address.City, "city", "", "city")
	createCmd.Flags().StringVar(&address.Province, "province", "", "province")
	createCmd.Flags().StringVar(&address.PostalCode, "postal-code", "", "postal code")
	createCmd.Flags().StringVar(&address.Country, "country", "Việt Nam", "country")
	createCmd.Flags().StringArrayVar(&areas, "area", nil, `area as "name" or "name:capacity", repeatable`)
	createCmd.MarkFlagRequired("name")

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <venueId>",
		Short: "Delete a venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("venue", args[0])
			if err != nil {
				return err
			}

			confirmer, err := a.confirmer(cmd, yes)
			if err != nil {
				return err
			}

			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}

			done, err := events.DeleteVenue(cmd.Context(), repo, confirmer, id)
			if err != nil {
				return err
			}

			reportOutcome(cmd.OutOrStdout(), done, "Venue deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(createCmd, deleteCmd)
	return cmd
}

func newAreaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Manage the areas of a venue",
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <venueId> <areaId>",
		Short: "Remove an area from a venue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			venueID, err := parseIDArg("venue", args[0])
			if err != nil {
				return err
			}
			areaID, err := parseIDArg("area", args[1])
			if err != nil {
				return err
			}

			confirmer, err := a.confirmer(cmd, yes)
			if err != nil {
				return err
			}

			repo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}

			done, err := events.DeleteArea(cmd.Context(), repo, confirmer, venueID, areaID)
			if err != nil {
				return err
			}

			reportOutcome(cmd.OutOrStdout(), done, "Area deleted")
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(deleteCmd)
	return cmd
}
