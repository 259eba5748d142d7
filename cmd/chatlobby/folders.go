package main

import (
	"fmt"
	"sort"

	"github.com/gakumasu1717-cloud/chatlobby/internal/clifmt"
	"github.com/gakumasu1717-cloud/chatlobby/lobby"
	"github.com/spf13/cobra"
)

func newFoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage chat folders",
	}
	cmd.AddCommand(newFoldersListCmd())
	cmd.AddCommand(newFoldersAddCmd())
	cmd.AddCommand(newFoldersRenameCmd())
	cmd.AddCommand(newFoldersDeleteCmd())
	return cmd
}

func newFoldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List folders in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			doc := rt.lobby.Load()

			list := doc.Folders
			sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })

			assigned := make(map[string]int)
			for _, folderID := range doc.ChatAssignments {
				assigned[folderID]++
			}

			rows := make([]clifmt.Row, 0, len(list))
			for _, f := range list {
				detail := fmt.Sprintf("id=%s chats=%d", f.ID, assigned[f.ID])
				if f.ID == lobby.FolderFavorites {
					detail = fmt.Sprintf("id=%s chats=%d", f.ID, len(doc.Favorites))
				}
				if f.IsSystem {
					detail += " (system)"
				}
				rows = append(rows, clifmt.Row{Name: f.Name, Detail: detail})
			}
			clifmt.PrintTable(cmd.OutOrStdout(), clifmt.TableOptions{
				Title: "Folders",
				Rows:  rows,
			})
			return nil
		},
	}
}

func newFoldersAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			id := rt.lobby.AddFolder(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newFoldersRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if !rt.lobby.RenameFolder(args[0], args[1]) {
				return fmt.Errorf("folder %q cannot be renamed (system folder or unknown id)", args[0])
			}
			return nil
		},
	}
}

func newFoldersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a folder; its chats move back to uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if !rt.lobby.DeleteFolder(args[0]) {
				return fmt.Errorf("folder %q cannot be deleted (system folder or unknown id)", args[0])
			}
			return nil
		},
	}
}
