package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"rewardledger/logx"
)

// LoadLedgerConfig reads and parses the ledger.yml file
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger config %s: %w", path, err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("could not decode ledger config %s: %w", path, err)
	}

	cfg := &cfgFile.Config
	if err := validateLedgerConfig(cfg); err != nil {
		return nil, err
	}

	logx.Info("CONFIG", fmt.Sprintf("Loaded ledger config | db=%s | listen=%s | fee=%d", cfg.DB.Backend, cfg.ListenAddr, cfg.Fee.ProtocolFee))
	return cfg, nil
}

func validateLedgerConfig(cfg *LedgerConfig) error {
	if cfg.Fee.ProtocolFee >= 10000 {
		return fmt.Errorf("protocol fee %d must be below 10000", cfg.Fee.ProtocolFee)
	}
	switch cfg.DB.Backend {
	case "", "memory":
	case "leveldb", "boltdb":
		if cfg.DB.Path == "" {
			return fmt.Errorf("db backend %s requires a path", cfg.DB.Backend)
		}
	default:
		return fmt.Errorf("unknown db backend %q", cfg.DB.Backend)
	}
	if cfg.Oracle.Endpoint == "" && len(cfg.Oracle.StaticPrincipals) == 0 && cfg.Oracle.DistributorPrincipal == "" {
		return fmt.Errorf("oracle config needs an endpoint or a static table")
	}
	return nil
}

type ServerConfig struct {
	MaxBodyBytes    int64 `ini:"max_body_bytes"`
	ShutdownGraceMs int   `ini:"shutdown_grace_ms"`
}

// LoadServerConfig reads server tuning from an .ini file
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	serverSection := cfg.Section("server")
	serverCfg := &ServerConfig{
		MaxBodyBytes:    1 << 20,
		ShutdownGraceMs: 5000,
	}
	err = serverSection.MapTo(serverCfg)
	if err != nil {
		return nil, err
	}
	return serverCfg, nil
}
