package events

import (
	"github.com/holiman/uint256"
)

// EventRouter is the ledger-facing publishing facade over the EventBus. It
// owns event construction so the ledger core never builds event structs
// itself.
type EventRouter struct {
	eventBus *EventBus
}

// NewEventRouter creates a new EventRouter instance
func NewEventRouter(eventBus *EventBus) *EventRouter {
	return &EventRouter{
		eventBus: eventBus,
	}
}

func (er *EventRouter) PublishRewardsUpdated(periodRewards, totalRewards, rewardPerToken, distributorDelta *uint256.Int, feeToDistributor bool, blockNum uint64) {
	er.eventBus.Publish(NewRewardsUpdated(periodRewards, totalRewards, rewardPerToken, distributorDelta, feeToDistributor, blockNum))
}

func (er *EventRouter) PublishRewardsToggled(account string, optedOut bool) {
	er.eventBus.Publish(NewRewardsToggled(account, optedOut))
}

func (er *EventRouter) PublishProtocolFeeUpdated(oldFee, newFee uint64) {
	er.eventBus.Publish(NewProtocolFeeUpdated(oldFee, newFee))
}

func (er *EventRouter) PublishProtocolFeeRecipientUpdated(oldRecipient, newRecipient string) {
	er.eventBus.Publish(NewProtocolFeeRecipientUpdated(oldRecipient, newRecipient))
}

func (er *EventRouter) PublishCheckpointTransfer(from, to string, amount *uint256.Int) {
	er.eventBus.Publish(NewCheckpointTransfer(from, to, amount))
}

// Subscribe subscribes to all ledger events
func (er *EventRouter) Subscribe() (SubscriberID, chan LedgerEvent) {
	return er.eventBus.Subscribe()
}

// Unsubscribe removes a subscription by ID
func (er *EventRouter) Unsubscribe(id SubscriberID) bool {
	return er.eventBus.Unsubscribe(id)
}
