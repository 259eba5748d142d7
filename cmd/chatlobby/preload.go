package main

import (
	"github.com/gakumasu1717-cloud/chatlobby/query"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPreloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preload",
		Short: "Warm the cache: personas, roster, and recent characters' chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}

			// The recency ordering decides which characters are worth
			// prefetching chats for.
			var recent []string
			chars, err := rt.engine.Characters(cmd.Context(), query.SortRecent)
			if err != nil {
				rt.logger.Warn("preload_roster_unavailable", "error", err.Error())
			} else {
				limit := viper.GetInt("preload.recent_characters")
				for _, c := range chars {
					if len(recent) >= limit {
						break
					}
					recent = append(recent, c.Avatar)
				}
			}

			rt.cache.Preload(cmd.Context(), recent)
			return nil
		},
	}
}
