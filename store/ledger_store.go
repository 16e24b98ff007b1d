package store

import (
	"fmt"
	"strings"
	"sync"

	"rewardledger/db"
	"rewardledger/jsonx"
	"rewardledger/logx"
	"rewardledger/types"
)

// LedgerStore persists checkpoint records and the global accumulator/fee
// state. Reads of absent records return their implicit zero value; every
// multi-record mutation commits through one provider batch so a failed
// operation leaves no partial state.
type LedgerStore interface {
	GetCheckpoint(account types.Account) (*types.Checkpoint, error)
	HasCheckpoint(account types.Account) (bool, error)
	GetAccumulator() (*types.AccumulatorState, error)
	GetFeeConfig() (*types.FeeConfig, error)
	Commit(update *LedgerUpdate) error
	// IterateCheckpoints visits every persisted checkpoint, for conservation
	// audits. The callback returns false to stop.
	IterateCheckpoints(callback func(account types.Account, cp *types.Checkpoint) bool) error
	MustClose()
}

// LedgerUpdate is the atomic unit of mutation: any subset of the accumulator,
// the fee config and touched checkpoints, written all-or-nothing.
type LedgerUpdate struct {
	Accumulator *types.AccumulatorState
	FeeConfig   *types.FeeConfig
	Checkpoints map[types.Account]*types.Checkpoint
}

func NewLedgerUpdate() *LedgerUpdate {
	return &LedgerUpdate{
		Checkpoints: make(map[types.Account]*types.Checkpoint),
	}
}

func (u *LedgerUpdate) SetCheckpoint(account types.Account, cp *types.Checkpoint) {
	u.Checkpoints[account] = cp
}

// Empty reports whether committing the update would write nothing.
func (u *LedgerUpdate) Empty() bool {
	return u.Accumulator == nil && u.FeeConfig == nil && len(u.Checkpoints) == 0
}

type GenericLedgerStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericLedgerStore(dbProvider db.DatabaseProvider) (*GenericLedgerStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericLedgerStore{
		dbProvider: dbProvider,
	}, nil
}

func checkpointKey(account types.Account) []byte {
	if account.IsDistributor() {
		return []byte(distributorCheckpointKey)
	}
	return []byte(prefixRealCheckpoint + account.Addr())
}

// GetCheckpoint returns the stored checkpoint for account, or the implicit
// zero-valued checkpoint when the account has never been touched.
func (ls *GenericLedgerStore) GetCheckpoint(account types.Account) (*types.Checkpoint, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	data, err := ls.dbProvider.Get(checkpointKey(account))
	if err != nil {
		return nil, fmt.Errorf("could not get checkpoint %s from db: %w", account, err)
	}
	if data == nil {
		return types.NewCheckpoint(), nil
	}

	var cp types.Checkpoint
	if err := jsonx.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint %s: %w", account, err)
	}
	return &cp, nil
}

func (ls *GenericLedgerStore) HasCheckpoint(account types.Account) (bool, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.dbProvider.Has(checkpointKey(account))
}

func (ls *GenericLedgerStore) GetAccumulator() (*types.AccumulatorState, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	data, err := ls.dbProvider.Get([]byte(StateKeyAccumulator))
	if err != nil {
		return nil, fmt.Errorf("could not get accumulator state from db: %w", err)
	}
	if data == nil {
		return types.NewAccumulatorState(), nil
	}

	var state types.AccumulatorState
	if err := jsonx.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accumulator state: %w", err)
	}
	return &state, nil
}

func (ls *GenericLedgerStore) GetFeeConfig() (*types.FeeConfig, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	data, err := ls.dbProvider.Get([]byte(StateKeyFeeConfig))
	if err != nil {
		return nil, fmt.Errorf("could not get fee config from db: %w", err)
	}
	if data == nil {
		return &types.FeeConfig{}, nil
	}

	var fee types.FeeConfig
	if err := jsonx.Unmarshal(data, &fee); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fee config: %w", err)
	}
	return &fee, nil
}

// Commit writes the whole update through one provider batch.
func (ls *GenericLedgerStore) Commit(update *LedgerUpdate) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	batch := ls.dbProvider.Batch()
	defer batch.Close()

	if update.Accumulator != nil {
		data, err := jsonx.Marshal(update.Accumulator)
		if err != nil {
			return fmt.Errorf("failed to marshal accumulator state: %w", err)
		}
		batch.Put([]byte(StateKeyAccumulator), data)
	}
	if update.FeeConfig != nil {
		data, err := jsonx.Marshal(update.FeeConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal fee config: %w", err)
		}
		batch.Put([]byte(StateKeyFeeConfig), data)
	}
	for account, cp := range update.Checkpoints {
		data, err := jsonx.Marshal(cp)
		if err != nil {
			return fmt.Errorf("failed to marshal checkpoint %s: %w", account, err)
		}
		batch.Put(checkpointKey(account), data)
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write ledger update to db: %w", err)
	}
	return nil
}

// IterateCheckpoints requires the provider to support prefix iteration.
func (ls *GenericLedgerStore) IterateCheckpoints(callback func(account types.Account, cp *types.Checkpoint) bool) error {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	iterable, ok := ls.dbProvider.(db.IterableProvider)
	if !ok {
		return fmt.Errorf("db provider does not support iteration")
	}

	var iterErr error
	err := iterable.IteratePrefix([]byte(PrefixCheckpoint), func(key, value []byte) bool {
		var account types.Account
		switch {
		case string(key) == distributorCheckpointKey:
			account = types.DistributorAccount()
		case strings.HasPrefix(string(key), prefixRealCheckpoint):
			account = types.RealAccount(string(key[len(prefixRealCheckpoint):]))
		default:
			iterErr = fmt.Errorf("unrecognized checkpoint key %q", key)
			return false
		}

		var cp types.Checkpoint
		if err := jsonx.Unmarshal(value, &cp); err != nil {
			iterErr = fmt.Errorf("failed to unmarshal checkpoint %s: %w", account, err)
			return false
		}
		return callback(account, &cp)
	})
	if err != nil {
		return err
	}
	return iterErr
}

func (ls *GenericLedgerStore) MustClose() {
	if err := ls.dbProvider.Close(); err != nil {
		logx.Error("LEDGER STORE", "Failed to close db provider: ", err)
		panic(err)
	}
}
