package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <folder-id> <chat-key>...",
		Short: "Move chats to a folder in one batch",
		Long: `Move one or more chats to the target folder. A chat key is
"<avatar>_<chat file>". All moves land in a single durable write.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			target := args[0]
			keys := args[1:]

			if doc := rt.lobby.Load(); !doc.HasFolder(target) {
				return fmt.Errorf("unknown folder id %q", target)
			}
			rt.lobby.MoveChatsBatch(keys, target)
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d chat(s) to %s\n", len(keys), target)
			return nil
		},
	}
}
