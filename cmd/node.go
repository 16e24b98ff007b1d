package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rewardledger/config"
	"rewardledger/db"
	"rewardledger/events"
	"rewardledger/exception"
	"rewardledger/interfaces"
	"rewardledger/jsonrpc"
	"rewardledger/ledger"
	"rewardledger/logx"
	"rewardledger/monitoring"
	"rewardledger/oracle"
	"rewardledger/store"
	"rewardledger/types"
)

const (
	defaultLedgerConfigPath = "config/samples/ledger.yml"
	defaultServerConfigPath = "config/samples/node.ini"
)

var (
	ledgerConfigPath string
	serverConfigPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reward ledger node",
	Run: func(cmd *cobra.Command, args []string) {
		runNode(ledgerConfigPath, serverConfigPath)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&ledgerConfigPath, "config", "c", defaultLedgerConfigPath, "Path to ledger.yml")
	runCmd.Flags().StringVar(&serverConfigPath, "server-config", defaultServerConfigPath, "Path to the server .ini file")
}

func runNode(configPath, serverPath string) {
	cfg, err := config.LoadLedgerConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load ledger configuration: %v", err)
	}
	serverCfg, err := config.LoadServerConfig(serverPath)
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	monitoring.InitMetrics()

	dbProvider, err := initializeProvider(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize db provider: %v", err)
	}

	ledgerStore, err := store.NewGenericLedgerStore(dbProvider)
	if err != nil {
		log.Fatalf("Failed to initialize ledger store: %v", err)
	}

	principalOracle, err := initializeOracle(cfg.Oracle)
	if err != nil {
		log.Fatalf("Failed to initialize principal oracle: %v", err)
	}

	eventBus := events.NewEventBus()
	eventRouter := events.NewEventRouter(eventBus)

	rewardLedger := ledger.NewRewardLedger(ledgerStore, principalOracle, eventRouter, ledger.Roles{
		RewardsOracle:        cfg.Roles.RewardsOracle,
		DistributorComponent: cfg.Roles.DistributorComponent,
		PrincipalOracle:      cfg.Roles.PrincipalOracle,
		Admin:                cfg.Roles.Admin,
	})

	if err := seedFeeConfig(ledgerStore, cfg.Fee); err != nil {
		log.Fatalf("Failed to seed fee config: %v", err)
	}

	rpcServer := jsonrpc.NewServer(cfg.ListenAddr, serverCfg.MaxBodyBytes, rewardLedger)
	rpcServer.Start()

	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		monitoring.RegisterMetrics(metricsMux)
		exception.SafeGo("metrics-server", func() {
			logx.Info("MONITORING", "Serving metrics on ", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
				logx.Error("MONITORING", "Metrics server stopped: ", err)
			}
		})
	}

	waitForShutdown(ledgerStore, serverCfg.ShutdownGraceMs)
}

func initializeProvider(cfg config.DBConfig) (db.DatabaseProvider, error) {
	switch cfg.Backend {
	case "leveldb":
		return db.NewLevelDBProvider(cfg.Path)
	case "boltdb":
		return db.NewBoltDBProvider(cfg.Path)
	case "", "memory":
		return db.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown db backend %q", cfg.Backend)
	}
}

func initializeOracle(cfg config.OracleConfig) (interfaces.PrincipalOracle, error) {
	if cfg.Endpoint != "" {
		return oracle.NewClient(cfg.Endpoint), nil
	}
	return oracle.NewStaticOracleFromConfig(cfg.StaticPrincipals, cfg.DistributorPrincipal)
}

// seedFeeConfig writes the configured fee split on first boot only. A node
// restarted over an existing database keeps whatever the admin last set.
func seedFeeConfig(ledgerStore store.LedgerStore, fee config.FeeConfig) error {
	stored, err := ledgerStore.GetFeeConfig()
	if err != nil {
		return err
	}
	if stored.ProtocolFee != 0 || stored.Recipient != "" {
		return nil
	}
	if fee.ProtocolFee == 0 && fee.Recipient == "" {
		return nil
	}
	if fee.ProtocolFee >= 10000 {
		return fmt.Errorf("protocol fee %d must be below 10000", fee.ProtocolFee)
	}

	update := store.NewLedgerUpdate()
	update.FeeConfig = &types.FeeConfig{ProtocolFee: fee.ProtocolFee, Recipient: fee.Recipient}
	return ledgerStore.Commit(update)
}

func waitForShutdown(ledgerStore store.LedgerStore, graceMs int) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logx.Info("NODE", "Received ", sig.String(), ", shutting down")
	time.Sleep(time.Duration(graceMs) * time.Millisecond)
	ledgerStore.MustClose()
}
