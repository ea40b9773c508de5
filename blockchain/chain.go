// Package blockchain implements the chain writer of the consensus core:
// block validation, the chain entry index, transactional application of
// name covenants with undo-based rollback, and the event stream consumed
// by downstream subscribers.
package blockchain

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/chaincfg"
	"github.com/handshake-org/hskd/dbaccess"
	"github.com/handshake-org/hskd/naming"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// Config is the set of collaborators a Chain is built from.
type Config struct {
	// DB is the database the chain persists entries, blocks, auctions
	// and undo logs to.
	DB *dbaccess.DatabaseContext

	// Params identifies the network the chain validates against.
	Params *chaincfg.Params
}

// Chain manages the block chain: it accepts blocks, maintains the entry
// index and the best chain, applies and rolls back name-auction state,
// and publishes events to subscribers.
//
// A single logical writer owns the tip: ProcessBlock serializes all
// mutations under the chain lock. Readers run concurrently against
// committed state.
type Chain struct {
	params *chaincfg.Params
	db     *dbaccess.DatabaseContext

	chainLock sync.RWMutex
	index     *blockIndex
	names     *nameSet
	notifier  *notifier

	// halted is set when an invariant violation is detected. Every
	// subsequent write is refused; the database needs repair.
	halted bool
}

// New constructs a Chain from the given config. A fresh database is
// bootstrapped with the network's genesis block; otherwise the entry
// index and name set are restored from disk.
func New(config *Config) (*Chain, error) {
	c := &Chain{
		params:   config.Params,
		db:       config.DB,
		index:    newBlockIndex(),
		names:    newNameSet(),
		notifier: newNotifier(),
	}

	_, _, found, err := dbaccess.FetchTip(c.db.NoTx())
	if err != nil {
		return nil, err
	}
	if !found {
		err = c.bootstrap()
		if err != nil {
			return nil, err
		}
		log.Infof("Chain bootstrapped with genesis block %s",
			c.index.Tip().Hash)
		return c, nil
	}

	err = c.restore()
	if err != nil {
		return nil, err
	}
	tip := c.index.Tip()
	log.Infof("Chain restored with tip %s at height %d", tip.Hash,
		tip.Height)
	return c, nil
}

// bootstrap connects the genesis block to an empty database. The genesis
// header commits to an empty name tree, so the tree root check is skipped
// for it; its claims and registrations are applied like any other block.
func (c *Chain) bootstrap() error {
	genesisBlock := c.params.GenesisBlock
	entry := NewChainEntry(genesisBlock, nil)
	if !entry.Hash.IsEqual(&c.params.GenesisHash) {
		return assertError("genesis block hashes to %s, want %s",
			entry.Hash, c.params.GenesisHash)
	}
	return c.connectBlock(entry, genesisBlock)
}

// restore rebuilds the in-memory index and name set from the database.
func (c *Chain) restore() error {
	dbCtx := c.db.NoTx()

	cursor, err := dbaccess.EntriesCursor(dbCtx)
	if err != nil {
		return err
	}
	defer cursor.Close()
	for ok := cursor.First(); ok; ok = cursor.Next() {
		raw, err := cursor.Value()
		if err != nil {
			return err
		}
		entry := &ChainEntry{}
		err = entry.Deserialize(bytes.NewReader(raw))
		if err != nil {
			return err
		}
		c.index.AddEntry(entry)
	}

	_, tipHeight, found, err := dbaccess.FetchTip(dbCtx)
	if err != nil {
		return err
	}
	if !found {
		return assertError("restore called on an empty database")
	}
	for height := uint32(0); height <= tipHeight; height++ {
		blockHash, found, err := dbaccess.FetchChainHash(dbCtx, height)
		if err != nil {
			return err
		}
		if !found {
			return assertError("main chain has no hash at height %d "+
				"below tip %d", height, tipHeight)
		}
		entry := c.index.LookupEntry(blockHash)
		if entry == nil {
			return assertError("main chain block %s at height %d has "+
				"no stored entry", blockHash, height)
		}
		c.index.SetTip(entry)
	}

	auctions, err := dbaccess.AuctionsCursor(dbCtx)
	if err != nil {
		return err
	}
	defer auctions.Close()
	for ok := auctions.First(); ok; ok = auctions.Next() {
		key, err := auctions.Key()
		if err != nil {
			return err
		}
		raw, err := auctions.Value()
		if err != nil {
			return err
		}
		nameHash, err := hash.NewHash(key.Suffix())
		if err != nil {
			return err
		}
		c.names.put(nameHash, append([]byte(nil), raw...))
	}
	return nil
}

// Params returns the network parameters the chain validates against.
func (c *Chain) Params() *chaincfg.Params {
	return c.params
}

// Tip returns the entry of the current best chain tip.
//
// This function is safe for concurrent access.
func (c *Chain) Tip() *ChainEntry {
	return c.index.Tip()
}

// Entry returns the chain entry for the given block hash, or nil when the
// hash is unknown or not on the main chain. Side chain entries are
// deliberately invisible to subscribers.
//
// This function is safe for concurrent access.
func (c *Chain) Entry(blockHash *hash.Hash) *ChainEntry {
	if !c.index.IsMainChain(blockHash) {
		return nil
	}
	return c.index.LookupEntry(blockHash)
}

// Hashes returns the main chain block hashes in the height range
// [start, end]. The range is clamped to the current tip.
//
// This function is safe for concurrent access.
func (c *Chain) Hashes(start, end uint32) []hash.Hash {
	tipHeight, ok := c.index.Height()
	if !ok {
		return nil
	}
	if end > tipHeight {
		end = tipHeight
	}
	if start > end {
		return nil
	}
	hashes := make([]hash.Hash, 0, end-start+1)
	for height := start; height <= end; height++ {
		entry := c.index.EntryByHeight(height)
		if entry == nil {
			break
		}
		hashes = append(hashes, entry.Hash)
	}
	return hashes
}

// EntryHeight returns the main chain height of the given block hash.
// Implements naming.EntrySource for RENEW anchor checks.
//
// This function is safe for concurrent access.
func (c *Chain) EntryHeight(blockHash *hash.Hash) (uint32, bool) {
	if !c.index.IsMainChain(blockHash) {
		return 0, false
	}
	return c.index.LookupEntry(blockHash).Height, true
}

// Subscribe registers a consumer of chain events with the given buffer
// depth, or the default depth when depth is not positive.
//
// This function is safe for concurrent access.
func (c *Chain) Subscribe(depth int) *Subscriber {
	return c.notifier.subscribe(depth)
}

// Unsubscribe removes the subscriber from the event fan-out.
//
// This function is safe for concurrent access.
func (c *Chain) Unsubscribe(sub *Subscriber) {
	c.notifier.unsubscribe(sub)
}

// NotifyTransaction publishes a mempool acceptance event. Called by the
// mempool collaborator; the chain itself never originates these.
//
// This function is safe for concurrent access.
func (c *Chain) NotifyTransaction(tx *wire.MsgTx) {
	c.notifier.broadcast(&Notification{
		Type: NTTransactionAccepted,
		Tx:   tx,
	}, c.index.Tip())
}

// PrepareTreeRoot dry-runs the covenants of a candidate block's
// transactions against the current tip state and returns the name tree
// root its header must commit to. Block template construction uses this
// to fill the header before mining.
//
// This function is safe for concurrent access.
func (c *Chain) PrepareTreeRoot(txs []*wire.MsgTx) (hash.Hash, error) {
	c.chainLock.RLock()
	defer c.chainLock.RUnlock()

	view := naming.NewView()
	blockCtx := &naming.BlockContext{
		Params:  c.params,
		Height:  c.index.Tip().Height + 1,
		Entries: c,
	}
	for _, tx := range txs {
		err := view.ApplyTransaction(c.names, blockCtx, tx)
		if err != nil {
			return hash.Hash{}, err
		}
	}
	dirty := make(map[hash.Hash][]byte, len(view.Auctions()))
	for nameHash, auction := range view.Auctions() {
		dirty[nameHash] = auction.Bytes()
	}
	return c.names.treeRoot(dirty), nil
}

// ProcessBlock validates the block and incorporates it into the chain.
// Blocks extending the best tip are connected directly; blocks on a side
// chain with more cumulative work trigger a reorganization; remaining
// side chain blocks are indexed and stored for later. Blocks whose parent
// is unknown are rejected as orphans.
//
// This function is safe for concurrent access.
func (c *Chain) ProcessBlock(block *wire.MsgBlock, flags BehaviorFlags) error {
	c.chainLock.Lock()
	defer c.chainLock.Unlock()

	if c.halted {
		return errors.New("chain writer is halted after an invariant " +
			"violation")
	}

	blockHash := block.BlockHash()
	if c.index.HaveEntry(&blockHash) {
		return ruleError(ErrDuplicateBlock, "already have block "+
			blockHash.String())
	}

	prev := c.index.LookupEntry(&block.Header.PrevBlock)
	if prev == nil {
		return ruleError(ErrOrphanBlock, "previous block "+
			block.Header.PrevBlock.String()+" is unknown")
	}

	err := checkBlockSanity(block, c.params, flags)
	if err != nil {
		return err
	}
	err = c.checkBlockContext(block, prev)
	if err != nil {
		return err
	}

	entry := NewChainEntry(block, prev)
	tip := c.index.Tip()

	if prev == tip {
		err = c.connectBlock(entry, block)
		if err != nil {
			return err
		}
		log.Debugf("Connected block %s at height %d", entry.Hash,
			entry.Height)
		return nil
	}

	// Side chain. Persist the block and its entry so a future reorg can
	// reach them, then reorganize now if the branch already has more
	// work than the tip.
	err = c.storeSideChainBlock(entry, block)
	if err != nil {
		return err
	}
	if entry.Chainwork.Cmp(tip.Chainwork) <= 0 {
		log.Debugf("Block %s extends a side chain at height %d", entry.Hash,
			entry.Height)
		return nil
	}
	return c.reorganize(entry)
}

// storeSideChainBlock persists a block that is not (yet) part of the best
// chain together with its entry.
func (c *Chain) storeSideChainBlock(entry *ChainEntry, block *wire.MsgBlock) error {
	dbTx, err := c.db.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	blockBytes, err := block.Bytes()
	if err != nil {
		return err
	}
	err = dbaccess.StoreBlock(dbTx, &entry.Hash, blockBytes)
	if err != nil {
		return err
	}
	entryBytes, err := entry.Bytes()
	if err != nil {
		return err
	}
	err = dbaccess.StoreEntry(dbTx, &entry.Hash, entryBytes)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}
	c.index.AddEntry(entry)
	return nil
}

// connectBlock applies the block on top of the current tip: it runs every
// covenant through a fresh view, checks the name tree commitment, commits
// the dirty auctions, the undo log, the entry and the main chain mapping
// in one database transaction, and then notifies subscribers.
func (c *Chain) connectBlock(entry *ChainEntry, block *wire.MsgBlock) error {
	view := naming.NewView()
	blockCtx := &naming.BlockContext{
		Params:  c.params,
		Height:  entry.Height,
		Entries: c,
	}
	for _, tx := range block.Transactions {
		err := view.ApplyTransaction(c.names, blockCtx, tx)
		if err != nil {
			return err
		}
	}

	// Serialize the view's working set once; the bytes feed the tree
	// root, the database and the in-memory mirror alike.
	dirty := make(map[hash.Hash][]byte, len(view.Auctions()))
	for nameHash, auction := range view.Auctions() {
		dirty[nameHash] = auction.Bytes()
	}

	// The header commits to the name tree after the block is applied.
	// The genesis header is the exception: it commits to the empty
	// tree. A mismatch on any later block means this node's store
	// disagrees with a block that was otherwise valid, which is not
	// recoverable here.
	if !entry.IsGenesis() {
		treeRoot := c.names.treeRoot(dirty)
		if !entry.TreeRoot.IsEqual(&treeRoot) {
			c.halted = true
			return errors.WithStack(assertError("tree root after "+
				"applying block %s is %s, header commits to %s",
				entry.Hash, treeRoot, entry.TreeRoot))
		}
	}

	dbTx, err := c.db.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	hasBlock, err := dbaccess.HasBlock(dbTx, &entry.Hash)
	if err != nil {
		return err
	}
	if !hasBlock {
		blockBytes, err := block.Bytes()
		if err != nil {
			return err
		}
		err = dbaccess.StoreBlock(dbTx, &entry.Hash, blockBytes)
		if err != nil {
			return err
		}
	}
	entryBytes, err := entry.Bytes()
	if err != nil {
		return err
	}
	err = dbaccess.StoreEntry(dbTx, &entry.Hash, entryBytes)
	if err != nil {
		return err
	}
	for nameHash, raw := range dirty {
		nameHash := nameHash
		err = dbaccess.StoreAuction(dbTx, &nameHash, raw)
		if err != nil {
			return err
		}
	}
	err = dbaccess.StoreUndo(dbTx, &entry.Hash, view.UndoLog().Bytes())
	if err != nil {
		return err
	}
	err = dbaccess.StoreChainHash(dbTx, entry.Height, &entry.Hash)
	if err != nil {
		return err
	}
	err = dbaccess.StoreTip(dbTx, &entry.Hash, entry.Height)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	for nameHash, raw := range dirty {
		nameHash := nameHash
		c.names.put(&nameHash, raw)
	}
	c.index.AddEntry(entry)
	c.index.SetTip(entry)

	c.notifier.broadcast(&Notification{
		Type:  NTBlockConnected,
		Entry: entry,
		Txs:   block.Transactions,
	}, entry)
	return nil
}

// disconnectBlock rolls the current tip back by replaying its undo log in
// reverse. An undo log that is missing or cannot be applied is a fatal
// database inconsistency.
func (c *Chain) disconnectBlock() error {
	tip := c.index.Tip()
	if tip == nil || tip.IsGenesis() {
		return assertError("cannot disconnect the genesis block")
	}

	undoBytes, found, err := dbaccess.FetchUndo(c.db.NoTx(), &tip.Hash)
	if err != nil {
		return err
	}
	if !found {
		c.halted = true
		return errors.WithStack(assertError("no undo log for connected "+
			"block %s", tip.Hash))
	}
	undo := naming.NewUndoLog()
	err = undo.Deserialize(bytes.NewReader(undoBytes))
	if err != nil {
		c.halted = true
		return errors.Wrapf(err, "undo log for block %s is corrupt",
			tip.Hash)
	}

	dbTx, err := c.db.NewTx()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	restored := make(map[hash.Hash][]byte, len(undo.Entries))
	for i := len(undo.Entries) - 1; i >= 0; i-- {
		undoEntry := &undo.Entries[i]
		if undoEntry.Prior == nil {
			err = dbaccess.DeleteAuction(dbTx, &undoEntry.NameHash)
			if err != nil {
				return err
			}
			restored[undoEntry.NameHash] = nil
			continue
		}
		raw := undoEntry.Prior.Bytes()
		err = dbaccess.StoreAuction(dbTx, &undoEntry.NameHash, raw)
		if err != nil {
			return err
		}
		restored[undoEntry.NameHash] = raw
	}
	err = dbaccess.DeleteUndo(dbTx, &tip.Hash)
	if err != nil {
		return err
	}
	err = dbaccess.DeleteChainHash(dbTx, tip.Height)
	if err != nil {
		return err
	}
	err = dbaccess.StoreTip(dbTx, &tip.PrevBlock, tip.Height-1)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	for nameHash, raw := range restored {
		nameHash := nameHash
		if raw == nil {
			c.names.remove(&nameHash)
			continue
		}
		c.names.put(&nameHash, raw)
	}
	c.index.RemoveTip()

	c.notifier.broadcast(&Notification{
		Type:  NTBlockDisconnected,
		Entry: tip,
	}, c.index.Tip())
	return nil
}

// reorganize switches the best chain to the branch ending at newTip. The
// old branch is disconnected back to the fork point, then the new branch
// is connected block by block. A new branch block that fails validation
// aborts the reorganization and the old branch is restored.
func (c *Chain) reorganize(newTip *ChainEntry) error {
	// Collect the new branch back to the fork point. Every entry on the
	// branch is already in the arena; the walk fails only if the store
	// lost a block body.
	var attach []*ChainEntry
	fork := newTip
	for fork != nil && !c.index.IsMainChain(&fork.Hash) {
		attach = append(attach, fork)
		fork = c.index.LookupEntry(&fork.PrevBlock)
	}
	if fork == nil {
		return assertError("side chain %s does not connect to the main "+
			"chain", newTip.Hash)
	}

	log.Infof("Reorganizing chain from tip %s to %s (fork at height %d)",
		c.index.Tip().Hash, newTip.Hash, fork.Height)

	var detached []*ChainEntry
	for c.index.Tip() != fork {
		detached = append(detached, c.index.Tip())
		err := c.disconnectBlock()
		if err != nil {
			return err
		}
	}

	// Attach in chain order. attach holds the branch tip-first.
	for i := len(attach) - 1; i >= 0; i-- {
		entry := attach[i]
		block, err := c.fetchBlock(&entry.Hash)
		if err != nil {
			return err
		}
		err = c.connectBlock(entry, block)
		if err != nil {
			if !IsRuleError(err) {
				return err
			}
			log.Warnf("Block %s failed during reorganization: %v; "+
				"restoring previous chain", entry.Hash, err)
			return c.restoreBranch(detached, err)
		}
	}
	return nil
}

// restoreBranch reconnects the previously detached blocks after a failed
// reorganization attempt. detached holds the old branch tip-first.
func (c *Chain) restoreBranch(detached []*ChainEntry, cause error) error {
	for c.index.Tip().Height > detached[len(detached)-1].Height-1 {
		err := c.disconnectBlock()
		if err != nil {
			return err
		}
	}
	for i := len(detached) - 1; i >= 0; i-- {
		entry := detached[i]
		block, err := c.fetchBlock(&entry.Hash)
		if err != nil {
			return err
		}
		err = c.connectBlock(entry, block)
		if err != nil {
			c.halted = true
			return errors.Wrap(err, "failed to restore previously "+
				"connected branch")
		}
	}
	return cause
}

// fetchBlock loads a stored block body by hash.
func (c *Chain) fetchBlock(blockHash *hash.Hash) (*wire.MsgBlock, error) {
	blockBytes, found, err := dbaccess.FetchBlock(c.db.NoTx(), blockHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, assertError("no stored block for indexed entry %s",
			blockHash)
	}
	block := &wire.MsgBlock{}
	err = block.Deserialize(bytes.NewReader(blockBytes))
	if err != nil {
		return nil, err
	}
	return block, nil
}
