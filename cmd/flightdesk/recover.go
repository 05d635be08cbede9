package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ent0n29/flightdesk/internal/memory"
	"github.com/ent0n29/flightdesk/internal/recovery"
)

func newRecoverCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Print the booking state recovered from a JSON transcript",
		Long: `recover reads a transcript, either a JSON array of {"role","text"} turns
oldest first or an object with a "turns" array, and prints the slots,
passenger fields and offer id that would be recovered from it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			turns, err := readTranscript(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(recovery.Project(turns))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Transcript file (default stdin)")
	return cmd
}

func readTranscript(r io.Reader) ([]memory.Turn, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	var turns []memory.Turn
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal([]byte(trimmed), &turns)
	} else {
		var wrapped struct {
			Turns []memory.Turn `json:"turns"`
		}
		err = json.Unmarshal([]byte(trimmed), &wrapped)
		turns = wrapped.Turns
	}
	if err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	for i, t := range turns {
		if t.Role != memory.RoleUser && t.Role != memory.RoleAssistant {
			return nil, fmt.Errorf("turn %d: unknown role %q", i, t.Role)
		}
	}
	return turns, nil
}
