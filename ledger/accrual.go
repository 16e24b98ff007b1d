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

func (l *RewardLedger) principalOf(account types.Account) (*uint256.Int, error) {
	if account.IsDistributor() {
		return l.oracle.DistributorPrincipal()
	}
	return l.oracle.PrincipalOf(account.Addr())
}

// computeBalance derives the account's balance at rewardPerToken without
// writing. Fast path when the checkpoint is current or frozen: the stored
// accrued reward is returned verbatim and the oracle is not consulted.
// Zero principal also returns the stored value; only the write path advances
// the pointer in that case.
func (l *RewardLedger) computeBalance(account types.Account, cp *types.Checkpoint, rewardPerToken *uint256.Int) (*uint256.Int, error) {
	if cp.OptedOut || cp.RewardPerTokenPaid.Eq(rewardPerToken) {
		return cp.AccruedReward.Clone(), nil
	}
	if rewardPerToken.Lt(cp.RewardPerTokenPaid) {
		// the accumulator is monotone; a checkpoint ahead of it is a bookkeeping bug
		return nil, errors.NewError(errors.ErrCodeUnderflow, fmt.Sprintf("accumulator behind checkpoint of %s", account))
	}

	principal, err := l.principalOf(account)
	if err != nil {
		return nil, fmt.Errorf("principal lookup failed for %s: %w", account, err)
	}
	if principal.IsZero() {
		return cp.AccruedReward.Clone(), nil
	}

	delta := new(uint256.Int).Sub(rewardPerToken, cp.RewardPerTokenPaid)
	earned, err := fixedmath.MulDiv(principal, delta, fixedmath.Scale)
	if err != nil {
		return nil, err
	}
	return fixedmath.AddUint128(cp.AccruedReward, earned)
}

// refreshedCheckpoint settles the account against rewardPerToken and returns
// the checkpoint to persist. changed is false when the checkpoint is already
// current or the account is frozen. Unlike the read path, a zero-principal
// account still gets its pointer advanced so the zero-length period is never
// recomputed.
func (l *RewardLedger) refreshedCheckpoint(account types.Account, cp *types.Checkpoint, rewardPerToken *uint256.Int) (*types.Checkpoint, bool, error) {
	if cp.OptedOut {
		return cp, false, nil
	}
	if cp.RewardPerTokenPaid.Eq(rewardPerToken) {
		return cp, false, nil
	}
	balance, err := l.computeBalance(account, cp, rewardPerToken)
	if err != nil {
		return nil, false, err
	}
	return &types.Checkpoint{
		AccruedReward:      balance,
		RewardPerTokenPaid: rewardPerToken.Clone(),
	}, true, nil
}

// RefreshCheckpoint settles the account's checkpoint against the current
// accumulator. Idempotent; a no-op on frozen accounts.
func (l *RewardLedger) RefreshCheckpoint(account types.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !account.Valid() {
		return l.reject("refresh", errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount))
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return err
	}
	cp, err := l.ledgerStore.GetCheckpoint(account)
	if err != nil {
		return err
	}

	refreshed, changed, err := l.refreshedCheckpoint(account, cp, accum.RewardPerToken)
	if err != nil {
		return l.reject("refresh", err)
	}
	if !changed {
		return nil
	}

	update := store.NewLedgerUpdate()
	update.SetCheckpoint(account, refreshed)
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	monitoring.IncreaseRefreshCount()
	logx.Debug("LEDGER", fmt.Sprintf("Refreshed checkpoint | account=%s | accrued=%s | reward_per_token=%s",
		account, refreshed.AccruedReward.Dec(), refreshed.RewardPerTokenPaid.Dec()))
	return nil
}

// RefreshCheckpoints settles both accounts against one accumulator snapshot
// read once, so a two-party operation observes a single consistent value for
// both sides. Returns each account's opt-out status.
func (l *RewardLedger) RefreshCheckpoints(a, b types.Account) (bool, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !a.Valid() || !b.Valid() {
		return false, false, l.reject("refresh", errors.NewError(errors.ErrCodeInvalidAccount, errors.ErrMsgInvalidAccount))
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return false, false, err
	}
	rewardPerToken := accum.RewardPerToken

	cpA, err := l.ledgerStore.GetCheckpoint(a)
	if err != nil {
		return false, false, err
	}
	refreshedA, changedA, err := l.refreshedCheckpoint(a, cpA, rewardPerToken)
	if err != nil {
		return false, false, l.reject("refresh", err)
	}

	update := store.NewLedgerUpdate()
	if changedA {
		update.SetCheckpoint(a, refreshedA)
	}

	refreshedB := refreshedA
	if a != b {
		cpB, err := l.ledgerStore.GetCheckpoint(b)
		if err != nil {
			return false, false, err
		}
		var changedB bool
		refreshedB, changedB, err = l.refreshedCheckpoint(b, cpB, rewardPerToken)
		if err != nil {
			return false, false, l.reject("refresh", err)
		}
		if changedB {
			update.SetCheckpoint(b, refreshedB)
		}
	}

	if !update.Empty() {
		if err := l.ledgerStore.Commit(update); err != nil {
			return false, false, err
		}
		monitoring.IncreaseRefreshCount()
	}
	return refreshedA.OptedOut, refreshedB.OptedOut, nil
}
