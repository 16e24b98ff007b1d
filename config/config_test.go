package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadLedgerConfig(t *testing.T) {
	path := writeTempFile(t, "ledger.yml", `
config:
  roles:
    rewards_oracle: "oracle-caller"
    distributor_component: "distributor-caller"
    principal_oracle: "principal-caller"
    admin: "admin-caller"
  fee:
    protocol_fee: 1000
    recipient: "feeaddr"
  oracle:
    static_principals:
      aaaa: "400"
    distributor_principal: "600"
  db:
    backend: "leveldb"
    path: "/tmp/rewardledger"
  listen_addr: ":8545"
  metrics_addr: ":9100"
`)

	cfg, err := LoadLedgerConfig(path)
	require.NoError(t, err)
	require.Equal(t, "oracle-caller", cfg.Roles.RewardsOracle)
	require.Equal(t, "admin-caller", cfg.Roles.Admin)
	require.Equal(t, uint64(1000), cfg.Fee.ProtocolFee)
	require.Equal(t, "feeaddr", cfg.Fee.Recipient)
	require.Equal(t, "400", cfg.Oracle.StaticPrincipals["aaaa"])
	require.Equal(t, "600", cfg.Oracle.DistributorPrincipal)
	require.Equal(t, "leveldb", cfg.DB.Backend)
	require.Equal(t, ":8545", cfg.ListenAddr)
	require.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestLoadLedgerConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "Fee at or above denominator",
			content: `
config:
  fee:
    protocol_fee: 10000
  oracle:
    endpoint: "http://localhost:9000"
`,
		},
		{
			name: "Durable backend without a path",
			content: `
config:
  oracle:
    endpoint: "http://localhost:9000"
  db:
    backend: "leveldb"
`,
		},
		{
			name: "Unknown backend",
			content: `
config:
  oracle:
    endpoint: "http://localhost:9000"
  db:
    backend: "rocksdb"
    path: "/tmp/x"
`,
		},
		{
			name: "No oracle source at all",
			content: `
config:
  db:
    backend: "memory"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "ledger.yml", tt.content)
			_, err := LoadLedgerConfig(path)
			require.Error(t, err)
		})
	}
}

func TestLoadLedgerConfigMissingFile(t *testing.T) {
	_, err := LoadLedgerConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadServerConfig(t *testing.T) {
	path := writeTempFile(t, "node.ini", `
[server]
max_body_bytes = 2097152
shutdown_grace_ms = 1000
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.Equal(t, int64(2097152), cfg.MaxBodyBytes)
	require.Equal(t, 1000, cfg.ShutdownGraceMs)
}

func TestLoadServerConfigDefaults(t *testing.T) {
	path := writeTempFile(t, "node.ini", "[server]\n")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, 5000, cfg.ShutdownGraceMs)
}
