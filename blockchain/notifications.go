package blockchain

import (
	"sync"

	"github.com/handshake-org/hskd/wire"
)

// NotificationType is the kind of chain event delivered to subscribers.
type NotificationType int

const (
	// NTBlockConnected indicates a block was appended to the best
	// chain. The notification carries the new entry and the block's
	// transactions.
	NTBlockConnected NotificationType = iota

	// NTBlockDisconnected indicates a block was rolled back during a
	// reorganization. The notification carries the detached entry.
	NTBlockDisconnected

	// NTTransactionAccepted indicates a transaction was accepted into
	// the mempool. Transaction events are unordered with respect to
	// block events and must not be used to infer chain state.
	NTTransactionAccepted

	// NTChainReset indicates the subscriber's picture of the chain is
	// no longer trustworthy and it must resynchronize from the carried
	// tip. Injected after a forced tip change, a cancelled rescan, or
	// when the subscriber fell too far behind and lost events.
	NTChainReset

	// NTBlockRescanned carries one historical block during a rescan,
	// with its transactions filtered through the subscriber's filter.
	NTBlockRescanned
)

var notificationTypeStrings = map[NotificationType]string{
	NTBlockConnected:      "NTBlockConnected",
	NTBlockDisconnected:   "NTBlockDisconnected",
	NTTransactionAccepted: "NTTransactionAccepted",
	NTChainReset:          "NTChainReset",
	NTBlockRescanned:      "NTBlockRescanned",
}

func (nt NotificationType) String() string {
	if s, ok := notificationTypeStrings[nt]; ok {
		return s
	}
	return "UnknownNotificationType"
}

// Notification is one event on a subscriber's stream. Entry and Txs are
// set for connect, disconnect and rescan events, Tx for transaction
// events, and Tip for resets.
type Notification struct {
	Type  NotificationType
	Entry *ChainEntry
	Txs   []*wire.MsgTx
	Tx    *wire.MsgTx
	Tip   *ChainEntry
}

// defaultSubscriberDepth is the event buffer depth of a subscriber that
// did not request a specific one.
const defaultSubscriberDepth = 64

// Subscriber is one registered consumer of chain events. Events arrive on
// C in strict chain order. The chain writer never blocks on a subscriber:
// when the buffer is full the oldest event is dropped and a chain reset
// is enqueued in its place, forcing the consumer to resynchronize.
type Subscriber struct {
	c chan *Notification

	mtx    sync.Mutex
	filter *Filter
}

// C returns the subscriber's event channel.
func (s *Subscriber) C() <-chan *Notification {
	return s.c
}

// SetFilter installs the filter used to select rescan transactions for
// this subscriber. A nil filter matches everything.
//
// This function is safe for concurrent access.
func (s *Subscriber) SetFilter(filter *Filter) {
	s.mtx.Lock()
	s.filter = filter
	s.mtx.Unlock()
}

// ClearFilter removes the subscriber's filter, returning it to
// match-everything behavior.
//
// This function is safe for concurrent access.
func (s *Subscriber) ClearFilter() {
	s.SetFilter(nil)
}

func (s *Subscriber) getFilter() *Filter {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.filter
}

// deliver enqueues the notification without ever blocking the caller. On
// overflow the oldest pending event is discarded and the notification is
// replaced by a chain reset carrying the current tip; the subscriber is
// expected to resynchronize through the chain client surface.
func (s *Subscriber) deliver(n *Notification, tip *ChainEntry) {
	select {
	case s.c <- n:
		return
	default:
	}

	// Buffer full. Make room by dropping the oldest event, then enqueue
	// a reset instead of the lost stretch of events.
	select {
	case <-s.c:
	default:
	}
	select {
	case s.c <- &Notification{Type: NTChainReset, Tip: tip}:
	default:
	}
}

// notifier fans chain events out to the registered subscribers. Only the
// chain writer sends; subscribers only receive.
type notifier struct {
	mtx         sync.Mutex
	subscribers map[*Subscriber]struct{}
}

func newNotifier() *notifier {
	return &notifier{subscribers: make(map[*Subscriber]struct{})}
}

// subscribe registers a new subscriber with the given buffer depth, or
// the default depth when depth is not positive.
func (n *notifier) subscribe(depth int) *Subscriber {
	if depth <= 0 {
		depth = defaultSubscriberDepth
	}
	sub := &Subscriber{c: make(chan *Notification, depth)}
	n.mtx.Lock()
	n.subscribers[sub] = struct{}{}
	n.mtx.Unlock()
	return sub
}

// unsubscribe removes the subscriber. Its channel is left open; pending
// events may still be drained.
func (n *notifier) unsubscribe(sub *Subscriber) {
	n.mtx.Lock()
	delete(n.subscribers, sub)
	n.mtx.Unlock()
}

// broadcast delivers the notification to every subscriber.
func (n *notifier) broadcast(notification *Notification, tip *ChainEntry) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	for sub := range n.subscribers {
		sub.deliver(notification, tip)
	}
}
