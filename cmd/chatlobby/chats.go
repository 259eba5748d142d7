package main

import (
	"fmt"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/internal/bus"
	"github.com/gakumasu1717-cloud/chatlobby/internal/clifmt"
	"github.com/gakumasu1717-cloud/chatlobby/lobby"
	"github.com/gakumasu1717-cloud/chatlobby/query"
	"github.com/spf13/cobra"
)

func newChatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats <avatar>",
		Short: "List one character's chats, filtered and ordered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			avatarID := args[0]
			mode, _ := cmd.Flags().GetString("sort")
			filter, _ := cmd.Flags().GetString("folder")

			rt.events.Publish(bus.TopicCharacterSelected, avatarID)

			chats, err := rt.engine.Chats(cmd.Context(), avatarID, mode, filter)
			if err != nil {
				rt.logger.Error("chats_unavailable", "avatar", avatarID, "error", err.Error())
				chats = nil
			}

			doc := rt.lobby.Load()
			rows := make([]clifmt.Row, 0, len(chats))
			for _, c := range chats {
				key := lobby.ChatKey(avatarID, c.FileName)
				name := c.FileName
				if doc.IsFavorite(key) {
					name = "* " + name
				}
				detail := fmt.Sprintf("folder=%s messages=%d", doc.FolderOf(key), c.Messages())
				if ts := query.ChatTimestamp(c); ts != 0 {
					detail += "  " + time.UnixMilli(ts).Format("2006-01-02 15:04")
				}
				rows = append(rows, clifmt.Row{Name: name, Detail: detail})
			}
			clifmt.PrintTable(cmd.OutOrStdout(), clifmt.TableOptions{
				Title:      "Chats of " + avatarID,
				Rows:       rows,
				EmptyText:  "No chats in this view.",
				NameHeader: "FILE",
			})
			return nil
		},
	}
	cmd.Flags().String("sort", "", "Sort mode: recent|name|messages (defaults to the stored preference).")
	cmd.Flags().String("folder", "", `Folder filter: a folder id, "favorites", or "all".`)
	return cmd
}
