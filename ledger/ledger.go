// Package ledger implements the lazy reward-accrual core: a global
// reward-per-token accumulator, per-account checkpoints settled on demand,
// the protocol-fee split and the virtual distributor aggregate. Value is
// conserved across an unbounded number of accounts while each call only
// touches the accounts involved.
package ledger

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"rewardledger/errors"
	"rewardledger/events"
	"rewardledger/fixedmath"
	"rewardledger/interfaces"
	"rewardledger/logx"
	"rewardledger/monitoring"
	"rewardledger/store"
	"rewardledger/types"
)

// Roles are the caller identities authorized for each restricted operation,
// linked once at setup.
type Roles struct {
	// RewardsOracle is the sole caller allowed to report total rewards
	RewardsOracle string
	// DistributorComponent is the sole caller allowed to settle claims
	DistributorComponent string
	// PrincipalOracle is the sole caller allowed to flip opt-out flags
	PrincipalOracle string
	// Admin is the sole caller allowed to change the fee configuration
	Admin string
}

// RewardLedger serializes every operation behind one lock; each mutating call
// validates, computes, then commits through a single store batch, so a failed
// call leaves no partial state. That mirrors the host model the accounting
// algorithm assumes: atomic operations, ordering concerns reduced to the
// last-update block check.
type RewardLedger struct {
	mu          sync.RWMutex
	ledgerStore store.LedgerStore
	oracle      interfaces.PrincipalOracle
	eventRouter *events.EventRouter
	roles       Roles
}

func NewRewardLedger(ledgerStore store.LedgerStore, oracle interfaces.PrincipalOracle, eventRouter *events.EventRouter, roles Roles) *RewardLedger {
	return &RewardLedger{
		ledgerStore: ledgerStore,
		oracle:      oracle,
		eventRouter: eventRouter,
		roles:       roles,
	}
}

func (l *RewardLedger) authorize(caller, role string) error {
	if caller == "" || caller != role {
		return errors.NewError(errors.ErrCodeUnauthorized, errors.ErrMsgUnauthorized)
	}
	return nil
}

// reject records a refused operation and passes the error through unchanged.
func (l *RewardLedger) reject(op string, err error) error {
	switch errors.CodeOf(err) {
	case errors.ErrCodeUnauthorized:
		monitoring.RecordRejectedOp(monitoring.OpUnauthorized)
	case errors.ErrCodeUnderflow:
		monitoring.RecordRejectedOp(monitoring.OpUnderflow)
	case errors.ErrCodeOverflow:
		monitoring.RecordRejectedOp(monitoring.OpOverflow)
	case errors.ErrCodeInvalidAccount:
		monitoring.RecordRejectedOp(monitoring.OpInvalidAccount)
	case errors.ErrCodeNoOp:
		monitoring.RecordRejectedOp(monitoring.OpNoOp)
	case errors.ErrCodeStaleAccumulator:
		monitoring.RecordRejectedOp(monitoring.OpStaleAccumulator)
	default:
		monitoring.RecordRejectedOp(monitoring.OpRejectedUnknown)
	}
	logx.Warn("LEDGER", fmt.Sprintf("Rejected %s: %v", op, err))
	return err
}

// BalanceOf returns the account's current balance derived lazily against the
// stored accumulator. Pure read, no checkpoint is advanced.
func (l *RewardLedger) BalanceOf(account types.Account) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !account.Valid() {
		return nil, errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount)
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return nil, err
	}
	cp, err := l.ledgerStore.GetCheckpoint(account)
	if err != nil {
		return nil, err
	}
	return l.computeBalance(account, cp, accum.RewardPerToken)
}

// TotalRewardsIssued returns the cumulative rewards ever reported.
func (l *RewardLedger) TotalRewardsIssued() (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return nil, err
	}
	return accum.TotalRewards, nil
}

// AccumulatorState returns a copy of the global accumulator.
func (l *RewardLedger) AccumulatorState() (*types.AccumulatorState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return nil, err
	}
	return accum.Clone(), nil
}

// GetCheckpoint returns a copy of the account's stored checkpoint.
func (l *RewardLedger) GetCheckpoint(account types.Account) (*types.Checkpoint, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !account.Valid() {
		return nil, errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount)
	}

	cp, err := l.ledgerStore.GetCheckpoint(account)
	if err != nil {
		return nil, err
	}
	return cp.Clone(), nil
}

// ProtocolFeeConfig returns a copy of the fee configuration.
func (l *RewardLedger) ProtocolFeeConfig() (*types.FeeConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fee, err := l.ledgerStore.GetFeeConfig()
	if err != nil {
		return nil, err
	}
	return fee.Clone(), nil
}

// AuditTotalBalances sums every stored checkpoint's computed balance at the
// current accumulator value. With all principal-holding accounts touched at
// least once, the sum matches TotalRewardsIssued within one unit per account
// of floor-division truncation.
func (l *RewardLedger) AuditTotalBalances() (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return nil, err
	}

	sum := uint256.NewInt(0)
	var innerErr error
	err = l.ledgerStore.IterateCheckpoints(func(account types.Account, cp *types.Checkpoint) bool {
		balance, err := l.computeBalance(account, cp, accum.RewardPerToken)
		if err != nil {
			innerErr = err
			return false
		}
		sum, innerErr = fixedmath.AddUint128(sum, balance)
		return innerErr == nil
	})
	if err != nil {
		return nil, err
	}
	if innerErr != nil {
		return nil, innerErr
	}
	return sum, nil
}
