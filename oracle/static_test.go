package oracle

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStaticOraclePrincipals(t *testing.T) {
	o := NewStaticOracle()
	o.SetPrincipal("aaaa", uint256.NewInt(400))
	o.SetDistributorPrincipal(uint256.NewInt(600))

	principal, err := o.PrincipalOf("aaaa")
	require.NoError(t, err)
	require.Equal(t, "400", principal.Dec())

	// unknown depositors hold zero principal
	principal, err = o.PrincipalOf("bbbb")
	require.NoError(t, err)
	require.Equal(t, "0", principal.Dec())

	distributor, err := o.DistributorPrincipal()
	require.NoError(t, err)
	require.Equal(t, "600", distributor.Dec())

	total, err := o.TotalStakedPrincipal()
	require.NoError(t, err)
	require.Equal(t, "1000", total.Dec())
}

func TestStaticOracleFromConfig(t *testing.T) {
	o, err := NewStaticOracleFromConfig(map[string]string{"aaaa": "250", "bbbb": "750"}, "1000")
	require.NoError(t, err)

	total, err := o.TotalStakedPrincipal()
	require.NoError(t, err)
	require.Equal(t, "2000", total.Dec())

	_, err = NewStaticOracleFromConfig(map[string]string{"aaaa": "not-a-number"}, "")
	require.Error(t, err)

	_, err = NewStaticOracleFromConfig(nil, "-1")
	require.Error(t, err)
}

func TestStaticOracleReturnsCopies(t *testing.T) {
	o := NewStaticOracle()
	o.SetPrincipal("aaaa", uint256.NewInt(400))

	principal, err := o.PrincipalOf("aaaa")
	require.NoError(t, err)
	principal.SetUint64(9999)

	again, err := o.PrincipalOf("aaaa")
	require.NoError(t, err)
	require.Equal(t, "400", again.Dec())
}
