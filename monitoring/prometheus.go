package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rewardledger/logx"
)

type OpRejectedReason string

var (
	OpUnauthorized     OpRejectedReason = "unauthorized"
	OpUnderflow        OpRejectedReason = "underflow"
	OpOverflow         OpRejectedReason = "overflow"
	OpInvalidAccount   OpRejectedReason = "invalid_account"
	OpNoOp             OpRejectedReason = "no_op"
	OpStaleAccumulator OpRejectedReason = "stale_accumulator"
	OpRejectedUnknown  OpRejectedReason = "other"
)

type ledgerPromMetrics struct {
	nodeUpUnixSeconds  prometheus.Gauge
	rewardsUpdateCount prometheus.Counter
	claimCount         prometheus.Counter
	transferCount      prometheus.Counter
	refreshCount       prometheus.Counter
	optToggleCount     prometheus.Counter
	rejectedOpCount    *prometheus.CounterVec
	lastUpdateBlock    prometheus.Gauge
	totalRewards       prometheus.Gauge
	panicCount         prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rewardledger_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the ledger service start",
			},
		),
		rewardsUpdateCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewardledger_rewards_update_count",
				Help: "The total number of accumulator updates applied",
			},
		),
		claimCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewardledger_claim_count",
				Help: "The total number of distributor claims settled",
			},
		),
		transferCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewardledger_transfer_count",
				Help: "The total number of checkpoint transfers applied",
			},
		),
		refreshCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewardledger_refresh_count",
				Help: "The total number of checkpoint refreshes persisted",
			},
		),
		optToggleCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewardledger_opt_toggle_count",
				Help: "The total number of accrual opt-out flag flips",
			},
		),
		rejectedOpCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewardledger_rejected_op_count",
				Help: "The total number of rejected ledger operations",
			},
			[]string{"reason"},
		),
		lastUpdateBlock: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rewardledger_last_update_block",
				Help: "The block height of the most recent accumulator update",
			},
		),
		totalRewards: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rewardledger_total_rewards",
				Help: "Cumulative rewards ever reported to the ledger",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rewardledger_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var ledgerMetrics *ledgerPromMetrics

// InitMetrics initializes metrics for the service but does not expose them
// yet. Record functions are no-ops until it runs, so library use and tests
// need no metrics setup.
func InitMetrics() {
	ledgerMetrics = newLedgerPromMetrics()
	ledgerMetrics.nodeUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func IncreaseRewardsUpdateCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.rewardsUpdateCount.Inc()
}

func IncreaseClaimCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.claimCount.Inc()
}

func IncreaseTransferCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.transferCount.Inc()
}

func IncreaseRefreshCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.refreshCount.Inc()
}

func IncreaseOptToggleCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.optToggleCount.Inc()
}

func RecordRejectedOp(reason OpRejectedReason) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.rejectedOpCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func SetLastUpdateBlock(blockNum uint64) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.lastUpdateBlock.Set(float64(blockNum))
}

func SetTotalRewards(totalRewards float64) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.totalRewards.Set(totalRewards)
}

func IncreasePanicCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.panicCount.Inc()
}
