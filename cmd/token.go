package main

import (
	"errors"
	"fmt"

	"github.com/International-Combat-Archery-Alliance/event-checkin/qrtoken"
	"github.com/spf13/cobra"
)

var errNotRegistrationToken = errors.New("not a registration token")

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Encode and decode registration tokens",
	}

	var strict bool
	encodeCmd := &cobra.Command{
		Use:   "encode <eventId> <userId> <registrationId>",
		Short: "Print a token for the registration, stamped with the current time",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strict {
				if err := qrtoken.CheckIdentifiers(args...); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), qrtoken.Encode(args[0], args[1], args[2]))
			return nil
		},
	}
	encodeCmd.Flags().BoolVar(&strict, "strict", false, "reject empty identifiers and identifiers containing "+qrtoken.Delimiter)

	decodeCmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Print the fields of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, ok := qrtoken.Decode(args[0])
			if !ok {
				return errNotRegistrationToken
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "event:        %s\n", payload.EventID)
			fmt.Fprintf(out, "user:         %s\n", payload.UserID)
			fmt.Fprintf(out, "registration: %s\n", payload.RegistrationID)
			if issuedAt, err := payload.IssuedAt(); err == nil {
				fmt.Fprintf(out, "issued:       %s\n", issuedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
			} else {
				fmt.Fprintf(out, "issued:       %s (not a timestamp)\n", payload.Timestamp)
			}
			return nil
		},
	}

	cmd.AddCommand(encodeCmd, decodeCmd)
	return cmd
}
