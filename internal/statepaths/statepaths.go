// Package statepaths resolves the on-disk locations of durable lobby state
// from viper configuration.
package statepaths

import (
	"github.com/gakumasu1717-cloud/chatlobby/internal/pathutil"
	"github.com/spf13/viper"
)

const (
	defaultStateDir = "~/.chatlobby"
	lobbyFilename   = "lobby.json"
)

func StateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("file_state_dir"), defaultStateDir)
}

// LobbyDocumentPath is the single well-known location of the persistent
// lobby document (folders, assignments, favorites, preferences).
func LobbyDocumentPath() string {
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), defaultStateDir, lobbyFilename)
}
