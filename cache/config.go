package cache

import "time"

// Category names one TTL-scoped slice of host data. Chat lists churn much
// faster than the character roster, so each category carries its own TTL
// instead of one global value.
type Category string

const (
	CategoryChats      Category = "chats"
	CategoryChatCounts Category = "chat-counts"
	CategoryPersonas   Category = "personas"
	CategoryCharacters Category = "characters"
)

func Categories() []Category {
	return []Category{CategoryChats, CategoryChatCounts, CategoryPersonas, CategoryCharacters}
}

type TTLConfig struct {
	Chats      time.Duration
	ChatCounts time.Duration
	Personas   time.Duration
	Characters time.Duration
}

func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		Chats:      30 * time.Second,
		ChatCounts: 60 * time.Second,
		Personas:   120 * time.Second,
		Characters: 60 * time.Second,
	}
}

func (c TTLConfig) normalize() TTLConfig {
	def := DefaultTTLConfig()
	if c.Chats <= 0 {
		c.Chats = def.Chats
	}
	if c.ChatCounts <= 0 {
		c.ChatCounts = def.ChatCounts
	}
	if c.Personas <= 0 {
		c.Personas = def.Personas
	}
	if c.Characters <= 0 {
		c.Characters = def.Characters
	}
	return c
}

func (c TTLConfig) ttl(cat Category) time.Duration {
	switch cat {
	case CategoryChats:
		return c.Chats
	case CategoryChatCounts:
		return c.ChatCounts
	case CategoryPersonas:
		return c.Personas
	case CategoryCharacters:
		return c.Characters
	default:
		return 0
	}
}
