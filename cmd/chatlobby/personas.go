package main

import (
	"github.com/gakumasu1717-cloud/chatlobby/internal/clifmt"
	"github.com/spf13/cobra"
)

func newPersonasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personas",
		Short: "List user personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			personas, err := rt.engine.Personas(cmd.Context())
			if err != nil {
				rt.logger.Error("personas_unavailable", "error", err.Error())
				personas = nil
			}

			rows := make([]clifmt.Row, 0, len(personas))
			for _, p := range personas {
				rows = append(rows, clifmt.Row{Name: p.Name, Detail: p.Key})
			}
			clifmt.PrintTable(cmd.OutOrStdout(), clifmt.TableOptions{
				Title:      "Personas",
				Rows:       rows,
				EmptyText:  "No personas available.",
				DetailHead: "KEY",
			})
			return nil
		},
	}
}
