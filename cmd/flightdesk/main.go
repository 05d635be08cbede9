// Package main is the entry point for the flightdesk service and its tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flightdesk",
		Short: "Conversational flight booking assistant",
		Long: `flightdesk serves a chat API that searches flights, collects passenger
details and confirms bookings, recovering booking context from the
conversation history on every turn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRecoverCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
