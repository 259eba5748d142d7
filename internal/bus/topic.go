package bus

const (
	TopicCharacterSelected = "lobby.character.selected"
	TopicBatchModeChanged  = "lobby.batchmode.changed"
	TopicLobbyStateSaved   = "lobby.state.saved"
	TopicCacheInvalidated  = "lobby.cache.invalidated"
)
