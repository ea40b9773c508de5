package blockchain

import (
	"context"
)

// Rescan replays the main chain from the given start height to the
// current tip as NTBlockRescanned events on the subscriber's channel,
// with each block's transactions filtered through the subscriber's
// filter. The scan honors cancellation between blocks; on cancellation
// and on completion alike, a final NTChainReset carrying the then-current
// tip tells the subscriber where the scan stopped.
//
// Rescan events are delivered only to the requesting subscriber. The
// chain may advance while a rescan runs; blocks the scan missed arrive as
// ordinary connect events or are covered by a later rescan.
//
// This function is safe for concurrent access.
func (c *Chain) Rescan(ctx context.Context, sub *Subscriber, start uint32) error {
	defer func() {
		tip := c.index.Tip()
		sub.deliver(&Notification{Type: NTChainReset, Tip: tip}, tip)
	}()

	for height := start; ; height++ {
		if err := ctx.Err(); err != nil {
			log.Debugf("Rescan cancelled at height %d", height)
			return err
		}

		c.chainLock.RLock()
		entry := c.index.EntryByHeight(height)
		if entry == nil {
			c.chainLock.RUnlock()
			return nil
		}
		block, err := c.fetchBlock(&entry.Hash)
		c.chainLock.RUnlock()
		if err != nil {
			return err
		}

		sub.deliver(&Notification{
			Type:  NTBlockRescanned,
			Entry: entry,
			Txs:   filterTxs(sub.getFilter(), block.Transactions),
		}, entry)
	}
}
