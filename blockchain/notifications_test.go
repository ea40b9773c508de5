package blockchain

import (
	"testing"
)

// TestSubscriberOverflow checks that a slow subscriber loses its oldest
// events in favor of a chain reset instead of blocking the writer.
func TestSubscriberOverflow(t *testing.T) {
	n := newNotifier()
	sub := n.subscribe(2)

	tip := &ChainEntry{Height: 9}
	entries := []*ChainEntry{{Height: 7}, {Height: 8}, {Height: 9}}
	for _, entry := range entries {
		n.broadcast(&Notification{
			Type:  NTBlockConnected,
			Entry: entry,
		}, tip)
	}

	// The first event was dropped to make room, and the overflowing
	// event was replaced by a reset carrying the tip.
	first := <-sub.C()
	if first.Type != NTBlockConnected || first.Entry.Height != 8 {
		t.Fatalf("first event is %v at height %d, want %v at height 8",
			first.Type, first.Entry.Height, NTBlockConnected)
	}
	second := <-sub.C()
	if second.Type != NTChainReset {
		t.Fatalf("second event is %v, want %v", second.Type, NTChainReset)
	}
	if second.Tip.Height != tip.Height {
		t.Fatalf("reset tip height is %d, want %d", second.Tip.Height,
			tip.Height)
	}

	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected extra event %v", extra.Type)
	default:
	}
}

// TestUnsubscribe checks that an unsubscribed consumer stops receiving
// events but may drain the ones already queued.
func TestUnsubscribe(t *testing.T) {
	n := newNotifier()
	sub := n.subscribe(0)

	n.broadcast(&Notification{Type: NTBlockConnected,
		Entry: &ChainEntry{Height: 1}}, nil)
	n.unsubscribe(sub)
	n.broadcast(&Notification{Type: NTBlockConnected,
		Entry: &ChainEntry{Height: 2}}, nil)

	got := <-sub.C()
	if got.Entry.Height != 1 {
		t.Fatalf("drained event has height %d, want 1", got.Entry.Height)
	}
	select {
	case extra := <-sub.C():
		t.Fatalf("received event at height %d after unsubscribing",
			extra.Entry.Height)
	default:
	}
}
