package config

// RolesConfig names the caller identities linked once at setup.
type RolesConfig struct {
	RewardsOracle        string `yaml:"rewards_oracle"`
	DistributorComponent string `yaml:"distributor_component"`
	PrincipalOracle      string `yaml:"principal_oracle"`
	Admin                string `yaml:"admin"`
}

// FeeConfig is the initial protocol fee configuration applied on first boot.
type FeeConfig struct {
	ProtocolFee uint64 `yaml:"protocol_fee"` // parts per 10000
	Recipient   string `yaml:"recipient"`
}

// OracleConfig selects the principal source: a JSON-RPC endpoint of the
// staking ledger, or a static table for dev runs.
type OracleConfig struct {
	Endpoint             string            `yaml:"endpoint"`
	StaticPrincipals     map[string]string `yaml:"static_principals"`
	DistributorPrincipal string            `yaml:"distributor_principal"`
}

// DBConfig selects the storage backend.
type DBConfig struct {
	Backend string `yaml:"backend"` // leveldb | boltdb | memory
	Path    string `yaml:"path"`
}

// LedgerConfig holds the configuration from ledger.yml
type LedgerConfig struct {
	Roles       RolesConfig  `yaml:"roles"`
	Fee         FeeConfig    `yaml:"fee"`
	Oracle      OracleConfig `yaml:"oracle"`
	DB          DBConfig     `yaml:"db"`
	ListenAddr  string       `yaml:"listen_addr"`
	MetricsAddr string       `yaml:"metrics_addr"`
}

// ConfigFile is the top-level structure for ledger.yml
type ConfigFile struct {
	Config LedgerConfig `yaml:"config"`
}
