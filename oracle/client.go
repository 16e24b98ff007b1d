// Package oracle provides PrincipalOracle implementations: a JSON-RPC client
// against the external staking-principal ledger, and a static in-process
// oracle for dev wiring.
package oracle

import (
	"context"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/holiman/uint256"
)

type principalParams struct {
	Address string `json:"address"`
}

type principalResult struct {
	Principal string `json:"principal"`
}

// Client queries the external staking-principal ledger over JSON-RPC.
type Client struct {
	cli *jrpc2.Client
}

// NewClient connects to the staking ledger's JSON-RPC endpoint.
func NewClient(endpoint string) *Client {
	ch := jhttp.NewChannel(endpoint, nil)
	return &Client{cli: jrpc2.NewClient(ch, nil)}
}

func (c *Client) call(method string, params interface{}) (*uint256.Int, error) {
	var res principalResult
	if err := c.cli.CallResult(context.Background(), method, params, &res); err != nil {
		return nil, fmt.Errorf("principal oracle call %s failed: %w", method, err)
	}
	principal, err := uint256.FromDecimal(res.Principal)
	if err != nil {
		return nil, fmt.Errorf("principal oracle returned invalid amount %q: %w", res.Principal, err)
	}
	return principal, nil
}

func (c *Client) PrincipalOf(addr string) (*uint256.Int, error) {
	return c.call("staking.getprincipal", principalParams{Address: addr})
}

func (c *Client) DistributorPrincipal() (*uint256.Int, error) {
	return c.call("staking.getdistributorprincipal", nil)
}

func (c *Client) TotalStakedPrincipal() (*uint256.Int, error) {
	return c.call("staking.gettotalprincipal", nil)
}

// Close terminates the underlying RPC client.
func (c *Client) Close() error {
	c.cli.Close()
	return nil
}
