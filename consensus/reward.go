package consensus

import "github.com/handshake-org/hskd/util"

// BlockSubsidy returns the subsidy for a block at the given height. The
// subsidy starts at BaseReward and halves every halvingInterval blocks,
// saturating to zero after MaxRewardHalvings halvings. The genesis block
// additionally claims the GenesisReward top-up; that adjustment lives in
// the genesis builder, not here.
func BlockSubsidy(height uint32, halvingInterval uint32) util.Amount {
	if halvingInterval == 0 {
		return BaseReward
	}

	halvings := height / halvingInterval
	if halvings >= MaxRewardHalvings {
		return 0
	}

	return util.Amount(BaseReward) >> halvings
}

// HasVersionBit returns whether the given version signals the passed
// version bit.
func HasVersionBit(version uint32, bit uint8) bool {
	return version&(1<<bit) != 0
}
