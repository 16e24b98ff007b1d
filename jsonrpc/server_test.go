package jsonrpc

import (
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewardledger/errors"
)

func TestParseAccount(t *testing.T) {
	account, rpcErr := parseAccount("a1b2c3d4")
	require.Nil(t, rpcErr)
	assert.False(t, account.IsDistributor())
	assert.Equal(t, "a1b2c3d4", account.Addr())

	account, rpcErr = parseAccount(DistributorAccountName)
	require.Nil(t, rpcErr)
	assert.True(t, account.IsDistributor())

	_, rpcErr = parseAccount("")
	require.NotNil(t, rpcErr)
	assert.Equal(t, -32004, rpcErr.Code)
}

func TestParseAmount(t *testing.T) {
	amount, rpcErr := parseAmount("340282366920938463463374607431768211455")
	require.Nil(t, rpcErr)
	assert.Equal(t, "340282366920938463463374607431768211455", amount.Dec())

	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		_, rpcErr := parseAmount(bad)
		require.NotNil(t, rpcErr, "amount %q", bad)
		assert.Equal(t, -32602, rpcErr.Code)
	}
}

func TestFromLedgerErrorMapsCodes(t *testing.T) {
	tests := []struct {
		code errors.LedgerErrorCode
		want int
	}{
		{errors.ErrCodeUnauthorized, -32001},
		{errors.ErrCodeUnderflow, -32002},
		{errors.ErrCodeOverflow, -32003},
		{errors.ErrCodeInvalidAccount, -32004},
		{errors.ErrCodeNoOp, -32005},
		{errors.ErrCodeStaleAccumulator, -32006},
		{errors.ErrCodeInternal, -32000},
	}
	for _, tt := range tests {
		rpcErr := fromLedgerError(errors.NewError(tt.code, "boom"))
		assert.Equal(t, tt.want, rpcErr.Code, string(tt.code))
	}
}

func TestToJRPC2ErrorCarriesLedgerCode(t *testing.T) {
	rpcErr := fromLedgerError(errors.NewError(errors.ErrCodeUnderflow, errors.ErrMsgUnderflow))
	err := toJRPC2Error(rpcErr)
	require.Error(t, err)

	jerr, ok := err.(*jrpc2.Error)
	require.True(t, ok)
	assert.Equal(t, jrpc2.Code(-32002), jerr.Code)
	assert.Equal(t, errors.ErrMsgUnderflow, jerr.Message)
}
