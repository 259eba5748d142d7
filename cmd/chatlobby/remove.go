package main

import (
	"fmt"

	"github.com/gakumasu1717-cloud/chatlobby/cache"
	"github.com/gakumasu1717-cloud/chatlobby/internal/bus"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete characters, chats or personas on the host",
	}
	cmd.AddCommand(newRemoveCharacterCmd())
	cmd.AddCommand(newRemoveChatCmd())
	cmd.AddCommand(newRemovePersonaCmd())
	return cmd
}

func newRemoveCharacterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "character <avatar>",
		Short: "Delete a character and all of its chats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			avatarID := args[0]
			if !rt.host.DeleteCharacter(cmd.Context(), avatarID) {
				return fmt.Errorf("host refused deleting character %q", avatarID)
			}
			rt.cache.Invalidate(cache.CategoryCharacters, "", true)
			rt.cache.Invalidate(cache.CategoryChats, avatarID, true)
			rt.cache.Invalidate(cache.CategoryChatCounts, avatarID, true)
			rt.events.Publish(bus.TopicCacheInvalidated, string(cache.CategoryCharacters))
			return nil
		},
	}
}

func newRemoveChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <avatar> <chat-file>",
		Short: "Delete a single chat file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			avatarID, chatFile := args[0], args[1]
			if !rt.host.DeleteChat(cmd.Context(), avatarID, chatFile) {
				return fmt.Errorf("host refused deleting chat %q", chatFile)
			}
			rt.cache.Invalidate(cache.CategoryChats, avatarID, true)
			rt.cache.Invalidate(cache.CategoryChatCounts, avatarID, true)
			rt.events.Publish(bus.TopicCacheInvalidated, string(cache.CategoryChats))
			return nil
		},
	}
}

func newRemovePersonaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "persona <key>",
		Short: "Delete a user persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if !rt.host.DeletePersona(cmd.Context(), args[0]) {
				return fmt.Errorf("host refused deleting persona %q", args[0])
			}
			rt.cache.Invalidate(cache.CategoryPersonas, "", true)
			rt.events.Publish(bus.TopicCacheInvalidated, string(cache.CategoryPersonas))
			return nil
		},
	}
}
