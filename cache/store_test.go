package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gakumasu1717-cloud/chatlobby/hostapi"
)

type fakeFetcher struct {
	mu sync.Mutex

	personas   []hostapi.PersonaRecord
	characters []hostapi.CharacterRecord
	chats      map[string][]hostapi.ChatRecord

	personaErr error
	charErr    error
	chatErr    map[string]error

	personaCalls int
	charCalls    int
	chatCalls    map[string]int

	// delay lets tests hold a fetch open while more callers join it.
	delay time.Duration

	// chatHook, when set, runs inside every chat fetch; tests use it to
	// block a fetch at a known point.
	chatHook func(avatarID string)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		chats:     make(map[string][]hostapi.ChatRecord),
		chatErr:   make(map[string]error),
		chatCalls: make(map[string]int),
	}
}

func (f *fakeFetcher) FetchPersonas(context.Context) ([]hostapi.PersonaRecord, error) {
	f.mu.Lock()
	f.personaCalls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.personas, f.personaErr
}

func (f *fakeFetcher) FetchCharacters(context.Context) ([]hostapi.CharacterRecord, error) {
	f.mu.Lock()
	f.charCalls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.characters, f.charErr
}

func (f *fakeFetcher) FetchChatsForCharacter(_ context.Context, avatarID string) ([]hostapi.ChatRecord, error) {
	f.mu.Lock()
	f.chatCalls[avatarID]++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.chatHook != nil {
		f.chatHook(avatarID)
	}
	if err := f.chatErr[avatarID]; err != nil {
		return nil, err
	}
	return f.chats[avatarID], nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(f Fetcher, ttl TTLConfig) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	s := New(f, ttl, nil)
	s.now = clock.Now
	return s, clock
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	s, clock := newTestStore(fetcher, TTLConfig{Chats: 30 * time.Second})

	s.SetChats("luna.png", []hostapi.ChatRecord{{FileName: "a.jsonl"}})
	if !s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("IsValid() = false immediately after Set")
	}

	clock.Advance(29 * time.Second)
	if !s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("IsValid() = false before TTL elapsed")
	}

	clock.Advance(2 * time.Second)
	if s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("IsValid() = true after TTL elapsed")
	}

	// A refreshing Set advances the timestamp.
	s.SetChats("luna.png", []hostapi.ChatRecord{{FileName: "a.jsonl"}})
	if !s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("IsValid() = false after refreshing Set")
	}
}

func TestTTLIsPerCategory(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	s, clock := newTestStore(fetcher, TTLConfig{Chats: 10 * time.Second, Personas: 100 * time.Second})

	s.SetChats("luna.png", nil)
	s.SetPersonas([]hostapi.PersonaRecord{{Key: "user", Name: "User"}})

	clock.Advance(50 * time.Second)
	if s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("chats still valid past their TTL")
	}
	if !s.IsValid(CategoryPersonas, "") {
		t.Fatalf("personas expired before their TTL")
	}
}

func TestChatsFetchIsDeduplicated(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.delay = 50 * time.Millisecond
	fetcher.chats["luna.png"] = []hostapi.ChatRecord{{FileName: "a.jsonl"}}
	s, _ := newTestStore(fetcher, TTLConfig{})

	const callers = 8
	results := make([][]hostapi.ChatRecord, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Chats(context.Background(), "luna.png")
		}(i)
	}
	wg.Wait()

	if got := fetcher.chatCalls["luna.png"]; got != 1 {
		t.Fatalf("underlying fetches = %d, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("Chats()[%d] error = %v", i, errs[i])
		}
		if len(results[i]) != 1 || results[i][0].FileName != "a.jsonl" {
			t.Fatalf("Chats()[%d] = %+v", i, results[i])
		}
	}
}

func TestFailedFetchDoesNotPoisonLaterCalls(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.chatErr["luna.png"] = errors.New("host down")
	s, _ := newTestStore(fetcher, TTLConfig{})

	if _, err := s.Chats(context.Background(), "luna.png"); err == nil {
		t.Fatalf("Chats() error = nil, want failure")
	}

	fetcher.chatErr["luna.png"] = nil
	fetcher.chats["luna.png"] = []hostapi.ChatRecord{{FileName: "b.jsonl"}}
	chats, err := s.Chats(context.Background(), "luna.png")
	if err != nil {
		t.Fatalf("Chats() after recovery error = %v", err)
	}
	if len(chats) != 1 || chats[0].FileName != "b.jsonl" {
		t.Fatalf("Chats() after recovery = %+v", chats)
	}
	if got := fetcher.chatCalls["luna.png"]; got != 2 {
		t.Fatalf("underlying fetches = %d, want 2", got)
	}
}

func TestChatCountFallsBackToChatFetch(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.chats["luna.png"] = []hostapi.ChatRecord{{FileName: "a.jsonl"}, {FileName: "b.jsonl"}}
	s, _ := newTestStore(fetcher, TTLConfig{})

	count, err := s.ChatCount(context.Background(), "luna.png")
	if err != nil {
		t.Fatalf("ChatCount() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("ChatCount() = %d, want 2", count)
	}

	// The fetched list also refreshed the count category; a second call
	// must not hit the host again.
	if _, err := s.ChatCount(context.Background(), "luna.png"); err != nil {
		t.Fatalf("ChatCount() error = %v", err)
	}
	if got := fetcher.chatCalls["luna.png"]; got != 1 {
		t.Fatalf("underlying fetches = %d, want 1", got)
	}
}

func TestInvalidateScopes(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	s, _ := newTestStore(fetcher, TTLConfig{})

	s.SetChats("luna.png", nil)
	s.SetChats("mira.png", nil)
	s.SetPersonas(nil)
	s.SetCharacters(nil)

	s.Invalidate(CategoryChats, "luna.png", false)
	if s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("luna.png chats survived targeted invalidation")
	}
	if !s.IsValid(CategoryChats, "mira.png") {
		t.Fatalf("mira.png chats lost by targeted invalidation")
	}

	// No sub-key clears the whole keyed category.
	s.Invalidate(CategoryChats, "", false)
	if s.IsValid(CategoryChats, "mira.png") {
		t.Fatalf("chats survived category-wide invalidation")
	}

	s.InvalidateAll()
	if s.IsValid(CategoryPersonas, "") || s.IsValid(CategoryCharacters, "") {
		t.Fatalf("singleton categories survived InvalidateAll")
	}
}

func TestPreloadSwallowsFailures(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.personaErr = errors.New("personas endpoint broken")
	fetcher.characters = []hostapi.CharacterRecord{{Avatar: "luna.png"}}
	fetcher.chats["luna.png"] = []hostapi.ChatRecord{{FileName: "a.jsonl"}}
	fetcher.chatErr["mira.png"] = errors.New("chat list broken")
	s, _ := newTestStore(fetcher, TTLConfig{})

	s.Preload(context.Background(), []string{"luna.png", "mira.png", ""})

	// The persona failure must not have kept the other fetches from landing.
	if !s.IsValid(CategoryCharacters, "") {
		t.Fatalf("characters not warmed despite persona failure")
	}
	if !s.IsValid(CategoryChats, "luna.png") {
		t.Fatalf("luna.png chats not warmed despite sibling failure")
	}
	if s.IsValid(CategoryChats, "mira.png") {
		t.Fatalf("mira.png chats marked valid after failed fetch")
	}
}

func TestPreloadSkipsValidEntries(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	s, _ := newTestStore(fetcher, TTLConfig{})
	s.SetPersonas(nil)
	s.SetCharacters(nil)
	s.SetChats("luna.png", nil)

	s.Preload(context.Background(), []string{"luna.png"})

	if fetcher.personaCalls != 0 || fetcher.charCalls != 0 || fetcher.chatCalls["luna.png"] != 0 {
		t.Fatalf("Preload refetched valid entries: personas=%d characters=%d chats=%d",
			fetcher.personaCalls, fetcher.charCalls, fetcher.chatCalls["luna.png"])
	}
}

func TestCategoryInvalidationDetachesInFlightFetch(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	defer close(release)

	fetcher := newFakeFetcher()
	fetcher.chats["luna.png"] = []hostapi.ChatRecord{{FileName: "a.jsonl"}}
	fetcher.chatHook = func(string) {
		entered <- struct{}{}
		<-release
	}
	s, _ := newTestStore(fetcher, TTLConfig{})

	go func() { _, _ = s.Chats(context.Background(), "luna.png") }()
	<-entered

	// The first fetch is still in flight. Clearing the whole category must
	// detach its registration so the next caller starts a fresh fetch
	// instead of joining the pre-invalidation one.
	s.Invalidate(CategoryChats, "", true)

	go func() { _, _ = s.Chats(context.Background(), "luna.png") }()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("second caller joined the fetch started before the invalidation")
	}

	fetcher.mu.Lock()
	got := fetcher.chatCalls["luna.png"]
	fetcher.mu.Unlock()
	if got != 2 {
		t.Fatalf("underlying fetches = %d, want 2", got)
	}
}

func TestConcurrentInvalidationNeverYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher()
	fetcher.chats["luna.png"] = []hostapi.ChatRecord{{FileName: "a.jsonl"}}
	s, _ := newTestStore(fetcher, TTLConfig{})

	// Whether a call lands on the cached entry or a fresh fetch, it must
	// never observe a half-invalidated zero value as a success.
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Invalidate(CategoryChats, "", true)
		}()
		go func() {
			defer wg.Done()
			chats, err := s.Chats(context.Background(), "luna.png")
			if err != nil {
				t.Errorf("Chats() error = %v", err)
				return
			}
			if len(chats) != 1 || chats[0].FileName != "a.jsonl" {
				t.Errorf("Chats() = %+v, want the fetched record", chats)
			}
		}()
	}
	wg.Wait()
}

func TestPendingRegistryDeduplicates(t *testing.T) {
	t.Parallel()

	reg := NewPendingRegistry()
	var runs atomic.Int64
	var wg, entered sync.WaitGroup
	const callers = 5
	entered.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entered.Done()
			v, err, _ := reg.GetOrRun("k", func() (any, error) {
				runs.Add(1)
				// Hold the operation open until every caller had a chance
				// to join it.
				entered.Wait()
				time.Sleep(10 * time.Millisecond)
				return 42, nil
			})
			if err != nil || v.(int) != 42 {
				t.Errorf("GetOrRun() = %v, %v", v, err)
			}
		}()
	}
	wg.Wait()
	if runs.Load() != 1 {
		t.Fatalf("operation runs = %d, want 1", runs.Load())
	}
}
