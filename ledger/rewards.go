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

// ReportTotalRewards advances the global accumulator from a new cumulative
// reward figure reported by the rewards oracle. The period's protocol fee is
// split out, the distributor aggregate is settled by snapshotting its balance
// under the old and the new accumulator value, which isolates the period's
// accrual from concurrent distributor-principal changes, and the whole
// result commits atomically.
func (l *RewardLedger) ReportTotalRewards(caller string, newTotalRewards *uint256.Int, blockNum uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(caller, l.roles.RewardsOracle); err != nil {
		return l.reject("report", err)
	}
	if !fixedmath.IsUint128(newTotalRewards) {
		return l.reject("report", errors.NewError(errors.ErrCodeOverflow, errors.ErrMsgOverflow))
	}

	accum, err := l.ledgerStore.GetAccumulator()
	if err != nil {
		return err
	}
	if newTotalRewards.Lt(accum.TotalRewards) {
		return l.reject("report", errors.NewError(errors.ErrCodeUnderflow, "total rewards must be non-decreasing"))
	}
	periodRewards := new(uint256.Int).Sub(newTotalRewards, accum.TotalRewards)

	if periodRewards.IsZero() {
		// only the block pointer moves; the accumulator is untouched
		accum.LastUpdateBlock = blockNum
		update := store.NewLedgerUpdate()
		update.Accumulator = accum
		if err := l.ledgerStore.Commit(update); err != nil {
			return err
		}
		monitoring.IncreaseRewardsUpdateCount()
		monitoring.SetLastUpdateBlock(blockNum)
		l.eventRouter.PublishRewardsUpdated(periodRewards, newTotalRewards.Clone(), accum.RewardPerToken.Clone(), uint256.NewInt(0), false, blockNum)
		logx.Info("LEDGER", fmt.Sprintf("Zero-delta rewards report | block=%d | total_rewards=%s", blockNum, newTotalRewards.Dec()))
		return nil
	}

	fee, err := l.ledgerStore.GetFeeConfig()
	if err != nil {
		return err
	}
	protocolPortion, err := fixedmath.MulDiv(periodRewards, uint256.NewInt(fee.ProtocolFee), uint256.NewInt(fixedmath.FeeDenominator))
	if err != nil {
		return l.reject("report", err)
	}
	netRewards := new(uint256.Int).Sub(periodRewards, protocolPortion)

	totalStaked, err := l.oracle.TotalStakedPrincipal()
	if err != nil {
		return fmt.Errorf("total staked principal lookup failed: %w", err)
	}

	newRewardPerToken := accum.RewardPerToken.Clone()
	if !totalStaked.IsZero() {
		increment, err := fixedmath.MulDiv(netRewards, fixedmath.Scale, totalStaked)
		if err != nil {
			return l.reject("report", err)
		}
		newRewardPerToken, err = fixedmath.AddUint128(accum.RewardPerToken, increment)
		if err != nil {
			return l.reject("report", err)
		}
	}

	// Snapshot the distributor under the old accumulator before touching
	// global state, then again under the new one. The difference is exactly
	// the period's accrual attributable to the distributor principal.
	distributor := types.DistributorAccount()
	distCp, err := l.ledgerStore.GetCheckpoint(distributor)
	if err != nil {
		return err
	}
	distOld, err := l.computeBalance(distributor, distCp, accum.RewardPerToken)
	if err != nil {
		return l.reject("report", err)
	}
	distNew, err := l.computeBalance(distributor, distCp, newRewardPerToken)
	if err != nil {
		return l.reject("report", err)
	}
	if totalStaked.IsZero() {
		// nothing to scale against; the whole net period parks on the distributor
		distNew, err = fixedmath.AddUint128(distNew, netRewards)
		if err != nil {
			return l.reject("report", err)
		}
	}

	update := store.NewLedgerUpdate()
	feeToDistributor := false
	if !protocolPortion.IsZero() {
		if fee.Recipient != "" {
			recipient := types.RealAccount(fee.Recipient)
			recipientCp, err := l.ledgerStore.GetCheckpoint(recipient)
			if err != nil {
				return err
			}
			refreshed, _, err := l.refreshedCheckpoint(recipient, recipientCp, newRewardPerToken)
			if err != nil {
				return l.reject("report", err)
			}
			credited := refreshed.Clone()
			credited.AccruedReward, err = fixedmath.AddUint128(credited.AccruedReward, protocolPortion)
			if err != nil {
				return l.reject("report", err)
			}
			update.SetCheckpoint(recipient, credited)
		} else {
			distNew, err = fixedmath.AddUint128(distNew, protocolPortion)
			if err != nil {
				return l.reject("report", err)
			}
			feeToDistributor = true
		}
	}

	distributorDelta := new(uint256.Int).Sub(distNew, distOld)
	if !distNew.Eq(distOld) {
		update.SetCheckpoint(distributor, &types.Checkpoint{
			AccruedReward:      distNew,
			RewardPerTokenPaid: newRewardPerToken.Clone(),
		})
	}

	accum.TotalRewards = newTotalRewards.Clone()
	accum.RewardPerToken = newRewardPerToken
	accum.LastUpdateBlock = blockNum
	update.Accumulator = accum
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	monitoring.IncreaseRewardsUpdateCount()
	monitoring.SetLastUpdateBlock(blockNum)
	monitoring.SetTotalRewards(newTotalRewards.Float64())
	l.eventRouter.PublishRewardsUpdated(periodRewards, newTotalRewards.Clone(), newRewardPerToken.Clone(), distributorDelta, feeToDistributor, blockNum)
	logx.Info("LEDGER", fmt.Sprintf("Applied rewards report | block=%d | period=%s | total=%s | reward_per_token=%s | distributor_delta=%s",
		blockNum, periodRewards.Dec(), newTotalRewards.Dec(), newRewardPerToken.Dec(), distributorDelta.Dec()))
	return nil
}

// SetProtocolFee updates the parts-per-10000 fee cut. Admin only; the fee
// must stay below 100%.
func (l *RewardLedger) SetProtocolFee(caller string, newFee uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(caller, l.roles.Admin); err != nil {
		return l.reject("set_fee", err)
	}
	if newFee >= fixedmath.FeeDenominator {
		return l.reject("set_fee", errors.NewError(errors.ErrCodeOverflow, "protocol fee must be below 10000"))
	}

	fee, err := l.ledgerStore.GetFeeConfig()
	if err != nil {
		return err
	}
	if fee.ProtocolFee == newFee {
		return l.reject("set_fee", errors.NewError(errors.ErrCodeNoOp, errors.ErrMsgNoOp))
	}

	oldFee := fee.ProtocolFee
	fee.ProtocolFee = newFee
	update := store.NewLedgerUpdate()
	update.FeeConfig = fee
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	l.eventRouter.PublishProtocolFeeUpdated(oldFee, newFee)
	logx.Info("LEDGER", fmt.Sprintf("Protocol fee updated | old=%d | new=%d", oldFee, newFee))
	return nil
}

// SetProtocolFeeRecipient updates the fee recipient. Admin only; an empty
// recipient routes future fees into the distributor aggregate.
func (l *RewardLedger) SetProtocolFeeRecipient(caller string, recipient string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(caller, l.roles.Admin); err != nil {
		return l.reject("set_fee_recipient", err)
	}

	fee, err := l.ledgerStore.GetFeeConfig()
	if err != nil {
		return err
	}
	if fee.Recipient == recipient {
		return l.reject("set_fee_recipient", errors.NewError(errors.ErrCodeNoOp, errors.ErrMsgNoOp))
	}

	oldRecipient := fee.Recipient
	fee.Recipient = recipient
	update := store.NewLedgerUpdate()
	update.FeeConfig = fee
	if err := l.ledgerStore.Commit(update); err != nil {
		return err
	}

	l.eventRouter.PublishProtocolFeeRecipientUpdated(oldRecipient, recipient)
	logx.Info("LEDGER", fmt.Sprintf("Protocol fee recipient updated | old=%s | new=%s", oldRecipient, recipient))
	return nil
}
