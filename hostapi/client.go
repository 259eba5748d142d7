// Package hostapi is the client for the chat host's in-process HTTP API:
// persona, character and chat listings plus the destructive calls the
// lobby forwards. All listings go through a retrying transport with a
// linearly growing delay between attempts.
package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/internal/retryutil"
)

const (
	pathPersonas          = "/api/personas"
	pathCharacters        = "/api/characters/all"
	pathCharacterChats    = "/api/characters/chats"
	pathCharacterFavorite = "/api/characters/favorite"
	pathCharacterDelete   = "/api/characters/delete"
	pathChatDelete        = "/api/chats/delete"
	pathPersonaDelete     = "/api/personas/delete"
)

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	Retries        int
	RetryBaseDelay time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	policy     retryutil.Policy
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		policy: retryutil.Policy{
			Attempts:  cfg.Retries,
			BaseDelay: cfg.RetryBaseDelay,
		},
	}
}

// FetchPersonas lists the user personas known to the host.
func (c *Client) FetchPersonas(ctx context.Context) ([]PersonaRecord, error) {
	var out []PersonaRecord
	err := c.getJSON(ctx, "personas", pathPersonas, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCharacters lists the full character roster.
func (c *Client) FetchCharacters(ctx context.Context) ([]CharacterRecord, error) {
	var out []CharacterRecord
	err := c.getJSON(ctx, "characters", pathCharacters, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FetchChatsForCharacter lists the chat files attached to one character.
// The host answers with either an array or a filename-keyed object; both
// decode into a uniform list.
func (c *Client) FetchChatsForCharacter(ctx context.Context, avatarID string) ([]ChatRecord, error) {
	var out ChatList
	err := c.postJSON(ctx, "character_chats", pathCharacterChats, map[string]string{"avatar_url": avatarID}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleCharacterFavorite flips the host-side favorite flag on a character.
func (c *Client) ToggleCharacterFavorite(ctx context.Context, avatarID string) bool {
	return c.mutate(ctx, "character_favorite", pathCharacterFavorite, map[string]string{"avatar_url": avatarID})
}

// DeleteCharacter removes a character and all of its chats on the host.
func (c *Client) DeleteCharacter(ctx context.Context, avatarID string) bool {
	return c.mutate(ctx, "character_delete", pathCharacterDelete, map[string]string{"avatar_url": avatarID})
}

// DeleteChat removes a single chat file on the host.
func (c *Client) DeleteChat(ctx context.Context, avatarID, chatFile string) bool {
	return c.mutate(ctx, "chat_delete", pathChatDelete, map[string]string{
		"avatar_url": avatarID,
		"chat_file":  chatFile,
	})
}

// DeletePersona removes a user persona on the host.
func (c *Client) DeletePersona(ctx context.Context, personaKey string) bool {
	return c.mutate(ctx, "persona_delete", pathPersonaDelete, map[string]string{"avatar_id": personaKey})
}

func (c *Client) getJSON(ctx context.Context, name, path string, out any) error {
	return retryutil.Do(ctx, c.logger, name, c.policy, func(ctx context.Context) error {
		return c.roundTrip(ctx, http.MethodGet, path, nil, out)
	})
}

func (c *Client) postJSON(ctx context.Context, name, path string, body, out any) error {
	return retryutil.Do(ctx, c.logger, name, c.policy, func(ctx context.Context) error {
		return c.roundTrip(ctx, http.MethodPost, path, body, out)
	})
}

type mutationResult struct {
	OK bool `json:"ok"`
}

// mutate reports success as a plain boolean; transport failure after the
// retry budget degrades to false rather than surfacing an error.
func (c *Client) mutate(ctx context.Context, name, path string, body any) bool {
	var result mutationResult
	err := retryutil.Do(ctx, c.logger, name, c.policy, func(ctx context.Context) error {
		return c.roundTrip(ctx, http.MethodPost, path, body, &result)
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Error("host_mutation_failed", "call", name, "error", err.Error())
		}
		return false
	}
	return result.OK
}

type serverError struct {
	status int
	path   string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("host returned %d for %s", e.status, e.path)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("host request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return &serverError{status: resp.StatusCode, path: path}
	}
	if resp.StatusCode != http.StatusOK {
		// Client-class statuses are not retried.
		return retryutil.Permanent(fmt.Errorf("host returned %d for %s", resp.StatusCode, path))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response for %s: %w", path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return retryutil.Permanent(fmt.Errorf("decode response for %s: %w", path, err))
	}
	return nil
}
