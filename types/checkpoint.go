package types

import (
	"github.com/holiman/uint256"
)

// Checkpoint is the per-account accrual state. AccruedReward is the account's
// balance frozen at the moment RewardPerTokenPaid was last settled; the true
// balance is derived lazily from the global accumulator on read. Both values
// are bounded to 128 bits in storage.
type Checkpoint struct {
	AccruedReward      *uint256.Int `json:"accrued_reward"`
	RewardPerTokenPaid *uint256.Int `json:"reward_per_token_paid"`
	OptedOut           bool         `json:"opted_out"`
}

// NewCheckpoint returns the implicit zero-valued checkpoint every account
// starts from the first time it is referenced.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		AccruedReward:      uint256.NewInt(0),
		RewardPerTokenPaid: uint256.NewInt(0),
	}
}

func (c *Checkpoint) Clone() *Checkpoint {
	return &Checkpoint{
		AccruedReward:      c.AccruedReward.Clone(),
		RewardPerTokenPaid: c.RewardPerTokenPaid.Clone(),
		OptedOut:           c.OptedOut,
	}
}

// AccumulatorState is the global reward accumulator. TotalRewards and
// RewardPerToken are monotonically non-decreasing; LastUpdateBlock is the
// height of the most recent accumulator update and gates transfers within
// the same block.
type AccumulatorState struct {
	TotalRewards    *uint256.Int `json:"total_rewards"`
	RewardPerToken  *uint256.Int `json:"reward_per_token"`
	LastUpdateBlock uint64       `json:"last_update_block"`
}

func NewAccumulatorState() *AccumulatorState {
	return &AccumulatorState{
		TotalRewards:   uint256.NewInt(0),
		RewardPerToken: uint256.NewInt(0),
	}
}

func (s *AccumulatorState) Clone() *AccumulatorState {
	return &AccumulatorState{
		TotalRewards:    s.TotalRewards.Clone(),
		RewardPerToken:  s.RewardPerToken.Clone(),
		LastUpdateBlock: s.LastUpdateBlock,
	}
}

// FeeConfig is the protocol fee cut taken from each reward period.
// ProtocolFee is expressed in parts per 10000 and must stay below 10000.
// When Recipient is empty the fee merges into the distributor aggregate.
type FeeConfig struct {
	ProtocolFee uint64 `json:"protocol_fee"`
	Recipient   string `json:"recipient"`
}

func (f *FeeConfig) Clone() *FeeConfig {
	clone := *f
	return &clone
}
