package main

import (
	"fmt"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/internal/clifmt"
	"github.com/spf13/cobra"
)

func newCharactersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "characters",
		Short: "List characters, favorites first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			mode, _ := cmd.Flags().GetString("sort")

			chars, err := rt.engine.Characters(cmd.Context(), mode)
			if err != nil {
				// The panel never hard-fails on a host outage; show an
				// empty listing and leave the details in the logs.
				rt.logger.Error("characters_unavailable", "error", err.Error())
				chars = nil
			}

			rows := make([]clifmt.Row, 0, len(chars))
			for _, c := range chars {
				detail := c.Avatar
				if c.DateLastChat != 0 {
					detail = fmt.Sprintf("%s  last chat %s", c.Avatar,
						time.UnixMilli(int64(c.DateLastChat)).Format("2006-01-02"))
				}
				name := c.Name
				if c.Favorite {
					name = "* " + name
				}
				rows = append(rows, clifmt.Row{Name: name, Detail: detail})
			}
			clifmt.PrintTable(cmd.OutOrStdout(), clifmt.TableOptions{
				Title:     "Characters",
				Rows:      rows,
				EmptyText: "No characters available.",
			})
			return nil
		},
	}
	cmd.Flags().String("sort", "", "Sort mode: recent|name|chats (defaults to the stored preference).")
	return cmd
}
