package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"rewardledger/errors"
	"rewardledger/fixedmath"
	"rewardledger/logx"
	"rewardledger/monitoring"
	"rewardledger/store"
	"rewardledger/types"
)

// Claim settles an off-ledger proof-based claim: value moves out of the
// distributor aggregate into a real account's checkpoint. Restricted to the
// distributor component; a checkpoint-level transfer, principal is untouched.
func (l *RewardLedger) Claim(caller string, account types.Account, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(caller, l.roles.DistributorComponent); err != nil {
		return l.reject("claim", err)
	}
	if account.IsDistributor() || !account.Valid() {
		return l.reject("claim", errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount))
	}
	if !fixedmath.IsUint128(amount) {
		return l.reject("claim", errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow))
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return err
	}

	distributor := types.DistributorAccount()
	update := store.NewLedgerUpdate()

	distCp, err := l.settledCheckpoint(distributor, accum.RewardPerToken, update)
	if err != nil {
		return l.reject("claim", err)
	}
	acctCp, err := l.settledCheckpoint(account, accum.RewardPerToken, update)
	if err != nil {
		return l.reject("claim", err)
	}

	distCp.AccruedReward, err = fixedmath.SubUint128(distCp.AccruedReward, amount)
	if err != nil {
		return l.reject("claim", err)
	}
	acctCp.AccruedReward, err = fixedmath.AddUint128(acctCp.AccruedReward, amount)
	if err != nil {
		return l.reject("claim", err)
	}

	update.SetCheckpoint(distributor, distCp)
	update.SetCheckpoint(account, acctCp)
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	monitoring.IncreaseClaimCount()
	l.eventRouter.PublishCheckpointTransfer(distributor.String(), account.String(), amount.Clone())
	logx.Info("LEDGER", fmt.Sprintf("Settled distributor claim | account=%s | amount=%s", account, amount.Dec()))
	return nil
}

// Transfer moves amount between two depositor checkpoints, both settled
// against the same accumulator snapshot. Forbidden in the block of the most
// recent accumulator update so a transfer can never race an in-flight reward
// distribution.
func (l *RewardLedger) Transfer(sender, recipient string, amount *uint256.Int, blockNum uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := types.RealAccount(sender)
	to := types.RealAccount(recipient)
	if !from.Valid() || !to.Valid() {
		return l.reject("transfer", errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount))
	}
	if !fixedmath.IsUint128(amount) {
		return l.reject("transfer", errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow))
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return err
	}
	if accum.LastUpdateBlock >= blockNum {
		return l.reject("transfer", errors.NewError(errors.ErrCodeStaleAccumulator, errors.ErrMsgStaleAccumulator))
	}

	update := store.NewLedgerUpdate()
	fromCp, err := l.settledCheckpoint(from, accum.RewardPerToken, update)
	if err != nil {
		return l.reject("transfer", err)
	}

	toCp := fromCp
	if from != to {
		toCp, err = l.settledCheckpoint(to, accum.RewardPerToken, update)
		if err != nil {
			return l.reject("transfer", err)
		}
	}

	fromCp.AccruedReward, err = fixedmath.SubUint128(fromCp.AccruedReward, amount)
	if err != nil {
		return l.reject("transfer", err)
	}
	toCp.AccruedReward, err = fixedmath.AddUint128(toCp.AccruedReward, amount)
	if err != nil {
		return l.reject("transfer", err)
	}

	update.SetCheckpoint(from, fromCp)
	update.SetCheckpoint(to, toCp)
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	monitoring.IncreaseTransferCount()
	l.eventRouter.PublishCheckpointTransfer(sender, recipient, amount.Clone())
	logx.Info("LEDGER", fmt.Sprintf("Applied checkpoint transfer | from=%s | to=%s | amount=%s", sender, recipient, amount.Dec()))
	return nil
}

// settledCheckpoint loads the account's checkpoint settled against the given
// accumulator snapshot, staging the refresh in update when it changed. The
// returned checkpoint is safe to mutate before SetCheckpoint. Frozen
// checkpoints come back verbatim, keeping their pointer untouched.
func (l *RewardLedger) settledCheckpoint(account types.Account, rewardPerToken *uint256.Int, update *store.LedgerUpdate) (*types.Checkpoint, error) {
	cp, err := l.ledgerStore.GetCheckpoint(account)
	if err != nil {
		return nil, err
	}
	refreshed, changed, err := l.refreshedCheckpoint(account, cp, rewardPerToken)
	if err != nil {
		return nil, err
	}
	if changed {
		update.SetCheckpoint(account, refreshed)
	}
	return refreshed.Clone(), nil
}

// SetOptedOut flips the per-account accrual freeze. Only the principal
// oracle may call it, since opting out mirrors that system's decision to
// track the account's rewards itself. On opt-out the checkpoint is settled
// first so the frozen balance is exact; on opt-in the pointer jumps to the
// flip-moment accumulator so no reward is back-filled for the frozen span.
func (l *RewardLedger) SetOptedOut(caller string, account types.Account, optedOut bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(caller, l.roles.PrincipalOracle); err != nil {
		return l.reject("set_opted_out", err)
	}
	if account.IsDistributor() || !account.Valid() {
		return l.reject("set_opted_out", errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount))
	}

	cp, err := l.ledgerStore.GetCheckpoint(account)
	if err != nil {
		return err
	}
	if cp.OptedOut == optedOut {
		return l.reject("set_opted_out", errors.NewError(errors.ErrCodeNoOp, errors.ErrMsgNoOp))
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return err
	}

	var next *types.Checkpoint
	if optedOut {
		refreshed, _, err := l.refreshedCheckpoint(account, cp, accum.RewardPerToken)
		if err != nil {
			return l.reject("set_opted_out", err)
		}
		next = refreshed.Clone()
		next.OptedOut = true
	} else {
		next = &types.Checkpoint{
			AccruedReward:      cp.AccruedReward.Clone(),
			RewardPerTokenPaid: accum.RewardPerToken.Clone(),
		}
	}

	update := store.NewLedgerUpdate()
	update.SetCheckpoint(account, next)
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	monitoring.IncreaseOptToggleCount()
	l.eventRouter.PublishRewardsToggled(account.String(), optedOut)
	logx.Info("LEDGER", fmt.Sprintf("Toggled accrual | account=%s | opted_out=%t | accrued=%s", account, optedOut, next.AccruedReward.Dec()))
	return nil
}
