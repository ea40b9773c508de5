package blockchain

import "github.com/handshake-org/hskd/logger"

var log, _ = logger.Get(logger.SubsystemTags.CHAN)
