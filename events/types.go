package events

import (
	"time"

	"github.com/holiman/uint256"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventRewardsUpdated              EventType = "RewardsUpdated"
	EventRewardsToggled              EventType = "RewardsToggled"
	EventProtocolFeeUpdated          EventType = "ProtocolFeeUpdated"
	EventProtocolFeeRecipientUpdated EventType = "ProtocolFeeRecipientUpdated"
	EventCheckpointTransfer          EventType = "CheckpointTransfer"
)

// LedgerEvent represents any event emitted by the reward ledger
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
}

// RewardsUpdated is emitted on every accumulator update, including zero-delta
// periods.
type RewardsUpdated struct {
	periodRewards    *uint256.Int
	totalRewards     *uint256.Int
	rewardPerToken   *uint256.Int
	distributorDelta *uint256.Int
	feeToDistributor bool
	blockNum         uint64
	timestamp        time.Time
}

func NewRewardsUpdated(periodRewards, totalRewards, rewardPerToken, distributorDelta *uint256.Int, feeToDistributor bool, blockNum uint64) *RewardsUpdated {
	return &RewardsUpdated{
		periodRewards:    periodRewards,
		totalRewards:     totalRewards,
		rewardPerToken:   rewardPerToken,
		distributorDelta: distributorDelta,
		feeToDistributor: feeToDistributor,
		blockNum:         blockNum,
		timestamp:        time.Now(),
	}
}

func (e *RewardsUpdated) Type() EventType {
	return EventRewardsUpdated
}

func (e *RewardsUpdated) Timestamp() time.Time {
	return e.timestamp
}

func (e *RewardsUpdated) PeriodRewards() *uint256.Int {
	return e.periodRewards
}

func (e *RewardsUpdated) TotalRewards() *uint256.Int {
	return e.totalRewards
}

func (e *RewardsUpdated) RewardPerToken() *uint256.Int {
	return e.rewardPerToken
}

func (e *RewardsUpdated) DistributorDelta() *uint256.Int {
	return e.distributorDelta
}

func (e *RewardsUpdated) FeeToDistributor() bool {
	return e.feeToDistributor
}

func (e *RewardsUpdated) BlockNum() uint64 {
	return e.blockNum
}

// RewardsToggled is emitted when an account's accrual freeze flag flips.
type RewardsToggled struct {
	account   string
	optedOut  bool
	timestamp time.Time
}

func NewRewardsToggled(account string, optedOut bool) *RewardsToggled {
	return &RewardsToggled{
		account:   account,
		optedOut:  optedOut,
		timestamp: time.Now(),
	}
}

func (e *RewardsToggled) Type() EventType {
	return EventRewardsToggled
}

func (e *RewardsToggled) Timestamp() time.Time {
	return e.timestamp
}

func (e *RewardsToggled) Account() string {
	return e.account
}

func (e *RewardsToggled) OptedOut() bool {
	return e.optedOut
}

// ProtocolFeeUpdated is emitted when the admin changes the fee cut.
type ProtocolFeeUpdated struct {
	oldFee    uint64
	newFee    uint64
	timestamp time.Time
}

func NewProtocolFeeUpdated(oldFee, newFee uint64) *ProtocolFeeUpdated {
	return &ProtocolFeeUpdated{
		oldFee:    oldFee,
		newFee:    newFee,
		timestamp: time.Now(),
	}
}

func (e *ProtocolFeeUpdated) Type() EventType {
	return EventProtocolFeeUpdated
}

func (e *ProtocolFeeUpdated) Timestamp() time.Time {
	return e.timestamp
}

func (e *ProtocolFeeUpdated) OldFee() uint64 {
	return e.oldFee
}

func (e *ProtocolFeeUpdated) NewFee() uint64 {
	return e.newFee
}

// ProtocolFeeRecipientUpdated is emitted when the admin changes the fee
// recipient; an empty recipient merges fees into the distributor aggregate.
type ProtocolFeeRecipientUpdated struct {
	oldRecipient string
	newRecipient string
	timestamp    time.Time
}

func NewProtocolFeeRecipientUpdated(oldRecipient, newRecipient string) *ProtocolFeeRecipientUpdated {
	return &ProtocolFeeRecipientUpdated{
		oldRecipient: oldRecipient,
		newRecipient: newRecipient,
		timestamp:    time.Now(),
	}
}

func (e *ProtocolFeeRecipientUpdated) Type() EventType {
	return EventProtocolFeeRecipientUpdated
}

func (e *ProtocolFeeRecipientUpdated) Timestamp() time.Time {
	return e.timestamp
}

func (e *ProtocolFeeRecipientUpdated) OldRecipient() string {
	return e.oldRecipient
}

func (e *ProtocolFeeRecipientUpdated) NewRecipient() string {
	return e.newRecipient
}

// CheckpointTransfer is emitted for every checkpoint-level debit/credit pair:
// transfers between depositors and settled distributor claims alike.
type CheckpointTransfer struct {
	from      string
	to        string
	amount    *uint256.Int
	timestamp time.Time
}

func NewCheckpointTransfer(from, to string, amount *uint256.Int) *CheckpointTransfer {
	return &CheckpointTransfer{
		from:      from,
		to:        to,
		amount:    amount,
		timestamp: time.Now(),
	}
}

func (e *CheckpointTransfer) Type() EventType {
	return EventCheckpointTransfer
}

func (e *CheckpointTransfer) Timestamp() time.Time {
	return e.timestamp
}

func (e *CheckpointTransfer) From() string {
	return e.from
}

func (e *CheckpointTransfer) To() string {
	return e.to
}

func (e *CheckpointTransfer) Amount() *uint256.Int {
	return e.amount
}
