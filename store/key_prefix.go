package store

// Declare database key prefix for objects
const (
	PrefixCheckpoint = "checkpoint:"

	// Real accounts and the distributor aggregate live in disjoint key
	// spaces under the checkpoint prefix. Addresses are caller-supplied
	// strings, so no address value may be able to alias the distributor
	// record.
	prefixRealCheckpoint     = PrefixCheckpoint + "r:"
	distributorCheckpointKey = PrefixCheckpoint + "d"

	StateKeyAccumulator = "state:accumulator"
	StateKeyFeeConfig   = "state:fee_config"
)
