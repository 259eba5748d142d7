package bus

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	b := New(nil)
	var got []any
	b.Subscribe(TopicCharacterSelected, func(p any) { got = append(got, p) })
	b.Subscribe(TopicCharacterSelected, func(p any) { got = append(got, p) })

	b.Publish(TopicCharacterSelected, "luna.png")
	if len(got) != 2 {
		t.Fatalf("Publish() delivered %d times, want 2", len(got))
	}
	for _, p := range got {
		if p != "luna.png" {
			t.Fatalf("Publish() payload = %v, want luna.png", p)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := New(nil)
	calls := 0
	unsub := b.Subscribe(TopicBatchModeChanged, func(any) { calls++ })

	b.Publish(TopicBatchModeChanged, true)
	unsub()
	unsub() // second call is a no-op
	b.Publish(TopicBatchModeChanged, false)

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	b := New(nil)
	survived := 0
	b.Subscribe(TopicLobbyStateSaved, func(any) { panic("bad handler") })
	b.Subscribe(TopicLobbyStateSaved, func(any) { survived++ })
	b.Subscribe(TopicLobbyStateSaved, func(any) { panic("another bad handler") })

	b.Publish(TopicLobbyStateSaved, nil)
	if survived != 1 {
		t.Fatalf("surviving handler calls = %d, want 1", survived)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	b := New(nil)
	b.Publish(TopicCacheInvalidated, "chats")
}
