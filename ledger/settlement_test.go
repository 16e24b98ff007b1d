package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"rewardledger/errors"
	"rewardledger/types"
)

// fundDistributor routes a fee-free period entirely into the distributor
// aggregate so claim tests start from a known balance.
func fundDistributor(t *testing.T, f *testFixture, amount uint64, blockNum uint64) {
	t.Helper()
	f.oracle.SetDistributorPrincipal(uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(amount), blockNum))
}

func TestClaimMovesValueOutOfDistributor(t *testing.T) {
	f := newTestFixture(t)
	fundDistributor(t, f, 100, 1)

	account := types.RealAccount(addrA)
	require.NoError(t, f.ledger.Claim(testDistributorComp, account, uint256.NewInt(30)))

	requireDec(t, "70", f.balance(t, types.DistributorAccount()))
	requireDec(t, "30", f.balance(t, account))

	sum, err := f.ledger.AuditTotalBalances()
	require.NoError(t, err)
	requireDec(t, "100", sum)
}

func TestClaimUnauthorized(t *testing.T) {
	f := newTestFixture(t)
	fundDistributor(t, f, 100, 1)

	err := f.ledger.Claim(testRewardsOracle, types.RealAccount(addrA), uint256.NewInt(10))
	require.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
}

func TestClaimRejectsDistributorTarget(t *testing.T) {
	f := newTestFixture(t)
	fundDistributor(t, f, 100, 1)

	err := f.ledger.Claim(testDistributorComp, types.DistributorAccount(), uint256.NewInt(10))
	require.True(t, errors.IsCode(err, errors.ErrCodeInvalidAccount))

	err = f.ledger.Claim(testDistributorComp, types.RealAccount(""), uint256.NewInt(10))
	require.True(t, errors.IsCode(err, errors.ErrCodeInvalidAccount))
}

func TestClaimUnderflowLeavesStateUntouched(t *testing.T) {
	f := newTestFixture(t)
	fundDistributor(t, f, 100, 1)

	account := types.RealAccount(addrA)
	err := f.ledger.Claim(testDistributorComp, account, uint256.NewInt(101))
	require.True(t, errors.IsCode(err, errors.ErrCodeUnderflow))

	// neither side of the failed claim moved
	requireDec(t, "100", f.balance(t, types.DistributorAccount()))
	requireDec(t, "0", f.balance(t, account))
}

// A depositor address crafted to spell out a distributor storage key must
// never reach the aggregate's balance; only Claim moves value out of it.
func TestTransferCannotReachDistributorAggregate(t *testing.T) {
	f := newTestFixture(t)
	fundDistributor(t, f, 100, 1)

	for _, addr := range []string{"!distributor", "distributor", "d"} {
		err := f.ledger.Transfer(addr, addrB, uint256.NewInt(100), 2)
		require.True(t, errors.IsCode(err, errors.ErrCodeUnderflow), addr)

		// reading such an address never surfaces the aggregate's checkpoint
		requireDec(t, "0", f.balance(t, types.RealAccount(addr)))
	}

	requireDec(t, "100", f.balance(t, types.DistributorAccount()))
	requireDec(t, "0", f.balance(t, types.RealAccount(addrB)))
}

func TestTransferBetweenDepositors(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))

	require.NoError(t, f.ledger.Transfer(addrA, addrB, uint256.NewInt(40), 2))

	requireDec(t, "60", f.balance(t, types.RealAccount(addrA)))
	requireDec(t, "40", f.balance(t, types.RealAccount(addrB)))
}

func TestTransferSameBlockAsUpdateRejected(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 5))

	err := f.ledger.Transfer(addrA, addrB, uint256.NewInt(10), 5)
	require.True(t, errors.IsCode(err, errors.ErrCodeStaleAccumulator))

	err = f.ledger.Transfer(addrA, addrB, uint256.NewInt(10), 4)
	require.True(t, errors.IsCode(err, errors.ErrCodeStaleAccumulator))

	require.NoError(t, f.ledger.Transfer(addrA, addrB, uint256.NewInt(10), 6))
}

func TestTransferInsufficientBalance(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))

	err := f.ledger.Transfer(addrA, addrB, uint256.NewInt(101), 2)
	require.True(t, errors.IsCode(err, errors.ErrCodeUnderflow))

	requireDec(t, "100", f.balance(t, types.RealAccount(addrA)))
	requireDec(t, "0", f.balance(t, types.RealAccount(addrB)))
}

func TestTransferToSelf(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))

	require.NoError(t, f.ledger.Transfer(addrA, addrA, uint256.NewInt(100), 2))
	requireDec(t, "100", f.balance(t, types.RealAccount(addrA)))
}

func TestOptOutFreezesAccrual(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	account := types.RealAccount(addrA)

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))
	require.NoError(t, f.ledger.SetOptedOut(testPrincipalOracle, account, true))

	// the balance at the flip moment is settled and frozen
	requireDec(t, "100", f.balance(t, account))

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(200), 2))
	requireDec(t, "100", f.balance(t, account))
}

func TestOptInResumesWithoutBackfill(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	account := types.RealAccount(addrA)

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))
	require.NoError(t, f.ledger.SetOptedOut(testPrincipalOracle, account, true))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(200), 2))

	// opting back in keeps the frozen balance and skips the frozen span
	require.NoError(t, f.ledger.SetOptedOut(testPrincipalOracle, account, false))
	requireDec(t, "100", f.balance(t, account))

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(250), 3))
	requireDec(t, "150", f.balance(t, account))
}

func TestOptedOutBalanceStaysTransferable(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	account := types.RealAccount(addrA)

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))
	require.NoError(t, f.ledger.SetOptedOut(testPrincipalOracle, account, true))

	require.NoError(t, f.ledger.Transfer(addrA, addrB, uint256.NewInt(40), 2))
	requireDec(t, "60", f.balance(t, account))
	requireDec(t, "40", f.balance(t, types.RealAccount(addrB)))

	// the freeze flag survives the transfer
	cp, err := f.ledger.GetCheckpoint(account)
	require.NoError(t, err)
	require.True(t, cp.OptedOut)
}

func TestSetOptedOutValidation(t *testing.T) {
	f := newTestFixture(t)
	account := types.RealAccount(addrA)

	err := f.ledger.SetOptedOut("intruder", account, true)
	require.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))

	err = f.ledger.SetOptedOut(testPrincipalOracle, types.DistributorAccount(), true)
	require.True(t, errors.IsCode(err, errors.ErrCodeInvalidAccount))

	err = f.ledger.SetOptedOut(testPrincipalOracle, account, false)
	require.True(t, errors.IsCode(err, errors.ErrCodeNoOp))

	require.NoError(t, f.ledger.SetOptedOut(testPrincipalOracle, account, true))
	err = f.ledger.SetOptedOut(testPrincipalOracle, account, true)
	require.True(t, errors.IsCode(err, errors.ErrCodeNoOp))
}
