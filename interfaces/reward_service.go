package interfaces

import (
	"github.com/holiman/uint256"

	"rewardledger/types"
)

// RewardService is the ledger surface exposed to transports. Mutating calls
// carry the caller identity; the ledger enforces which role may invoke what.
type RewardService interface {
	// Reads
	BalanceOf(account types.Account) (*uint256.Int, error)
	TotalRewardsIssued() (*uint256.Int, error)
	AccumulatorState() (*types.AccumulatorState, error)
	GetCheckpoint(account types.Account) (*types.Checkpoint, error)
	ProtocolFeeConfig() (*types.FeeConfig, error)

	// Checkpoint maintenance
	RefreshCheckpoint(account types.Account) error
	RefreshCheckpoints(a, b types.Account) (aOptedOut, bOptedOut bool, err error)

	// Accumulator updates and settlements
	ReportTotalRewards(caller string, newTotalRewards *uint256.Int, blockNum uint64) error
	Claim(caller string, account types.Account, amount *uint256.Int) error
	Transfer(sender, recipient string, amount *uint256.Int, blockNum uint64) error
	SetOptedOut(caller string, account types.Account, optedOut bool) error

	// Fee administration
	SetProtocolFee(caller string, fee uint64) error
	SetProtocolFeeRecipient(caller string, recipient string) error
}
