package main

import (
	"fmt"

	"github.com/gakumasu1717-cloud/chatlobby/cache"
	"github.com/gakumasu1717-cloud/chatlobby/internal/bus"
	"github.com/spf13/cobra"
)

func newFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite <avatar> [chat-file]",
		Short: "Toggle a chat favorite, or a character favorite with --character",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			character, _ := cmd.Flags().GetBool("character")

			if character {
				if len(args) != 1 {
					return fmt.Errorf("--character takes only the avatar argument")
				}
				if !rt.host.ToggleCharacterFavorite(cmd.Context(), args[0]) {
					return fmt.Errorf("host refused the favorite toggle for %q", args[0])
				}
				// The roster carries the favorite flag; drop it so the
				// next listing reflects the change.
				rt.cache.Invalidate(cache.CategoryCharacters, "", true)
				rt.events.Publish(bus.TopicCacheInvalidated, string(cache.CategoryCharacters))
				return nil
			}

			if len(args) != 2 {
				return fmt.Errorf("chat favorites need <avatar> and <chat-file>")
			}
			state := rt.lobby.ToggleFavorite(args[0], args[1])
			if state {
				fmt.Fprintln(cmd.OutOrStdout(), "favorited")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "unfavorited")
			}
			return nil
		},
	}
	cmd.Flags().Bool("character", false, "Toggle the host-side character favorite instead of a chat favorite.")
	return cmd
}
