package ledger

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"rewardledger/errors"
	"rewardledger/monitoring"
	"rewardledger/types"
)

func TestReportTotalRewardsUnauthorized(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))

	for _, caller := range []string{"", "intruder", testAdmin} {
		err := f.ledger.ReportTotalRewards(caller, uint256.NewInt(100), 1)
		require.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized), "caller %q", caller)
	}

	total, err := f.ledger.TotalRewardsIssued()
	require.NoError(t, err)
	requireDec(t, "0", total)
}

func TestReportTotalRewardsDecreaseRejected(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))

	err := f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(50), 2)
	require.True(t, errors.IsCode(err, errors.ErrCodeUnderflow))

	// rejected reports leave the accumulator untouched
	accum, err := f.ledger.AccumulatorState()
	require.NoError(t, err)
	requireDec(t, "100", accum.TotalRewards)
	require.Equal(t, uint64(1), accum.LastUpdateBlock)
}

func TestReportTotalRewardsOverflowRejected(t *testing.T) {
	f := newTestFixture(t)
	tooWide := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	err := f.ledger.ReportTotalRewards(testRewardsOracle, tooWide, 1)
	require.True(t, errors.IsCode(err, errors.ErrCodeOverflow))
}

func TestReportTotalRewardsZeroDelta(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 7))

	accum, err := f.ledger.AccumulatorState()
	require.NoError(t, err)
	requireDec(t, "100", accum.TotalRewards)
	requireDec(t, "100000000000000000", accum.RewardPerToken)
	require.Equal(t, uint64(7), accum.LastUpdateBlock)
}

func TestReportTotalRewardsNothingStaked(t *testing.T) {
	f := newTestFixture(t)
	f.setFee(t, 1000, "")

	// no principal anywhere: the whole net period parks on the distributor
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))

	accum, err := f.ledger.AccumulatorState()
	require.NoError(t, err)
	requireDec(t, "0", accum.RewardPerToken)
	requireDec(t, "100", f.balance(t, types.DistributorAccount()))
}

func TestSetProtocolFee(t *testing.T) {
	f := newTestFixture(t)

	err := f.ledger.SetProtocolFee("intruder", 100)
	require.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))

	err = f.ledger.SetProtocolFee(testAdmin, 10000)
	require.True(t, errors.IsCode(err, errors.ErrCodeOverflow))

	err = f.ledger.SetProtocolFee(testAdmin, 0)
	require.True(t, errors.IsCode(err, errors.ErrCodeNoOp))

	require.NoError(t, f.ledger.SetProtocolFee(testAdmin, 500))
	fee, err := f.ledger.ProtocolFeeConfig()
	require.NoError(t, err)
	require.Equal(t, uint64(500), fee.ProtocolFee)

	err = f.ledger.SetProtocolFee(testAdmin, 500)
	require.True(t, errors.IsCode(err, errors.ErrCodeNoOp))
}

func TestSetProtocolFeeRecipient(t *testing.T) {
	f := newTestFixture(t)

	err := f.ledger.SetProtocolFeeRecipient("intruder", addrC)
	require.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))

	require.NoError(t, f.ledger.SetProtocolFeeRecipient(testAdmin, addrC))
	fee, err := f.ledger.ProtocolFeeConfig()
	require.NoError(t, err)
	require.Equal(t, addrC, fee.Recipient)

	err = f.ledger.SetProtocolFeeRecipient(testAdmin, addrC)
	require.True(t, errors.IsCode(err, errors.ErrCodeNoOp))

	// clearing the recipient routes future fees into the distributor
	require.NoError(t, f.ledger.SetProtocolFeeRecipient(testAdmin, ""))
	fee, err = f.ledger.ProtocolFeeConfig()
	require.NoError(t, err)
	require.Equal(t, "", fee.Recipient)
}

// Totals past 2^64 must reach the gauge with their magnitude intact rather
// than wrapping to the low 64 bits.
func TestTotalRewardsGaugeKeepsMagnitudeAboveUint64(t *testing.T) {
	monitoring.InitMetrics()
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 70)
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, huge, 1))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var value float64
	found := false
	for _, family := range families {
		if family.GetName() == "rewardledger_total_rewards" {
			value = family.GetMetric()[0].GetGauge().GetValue()
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, math.Ldexp(1, 70), value)
	require.Greater(t, value, float64(math.MaxUint64))
}

func TestFeeChangeAppliesFromNextPeriod(t *testing.T) {
	f := newTestFixture(t)
	f.oracle.SetPrincipal(addrA, uint256.NewInt(1000))

	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(100), 1))
	require.NoError(t, f.ledger.SetProtocolFee(testAdmin, 5000))
	require.NoError(t, f.ledger.ReportTotalRewards(testRewardsOracle, uint256.NewInt(200), 2))

	// first period fee-free, second period split 50/50 with the distributor
	requireDec(t, "150", f.balance(t, types.RealAccount(addrA)))
	requireDec(t, "50", f.balance(t, types.DistributorAccount()))
}
