package oracle

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// StaticOracle serves principals from an in-memory table, for dev runs and
// tests without a live staking ledger. Totals are maintained alongside the
// table so TotalStakedPrincipal stays consistent with the entries.
type StaticOracle struct {
	mu          sync.RWMutex
	principals  map[string]*uint256.Int
	distributor *uint256.Int
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{
		principals:  make(map[string]*uint256.Int),
		distributor: uint256.NewInt(0),
	}
}

// NewStaticOracleFromConfig builds the table from decimal amount strings.
func NewStaticOracleFromConfig(principals map[string]string, distributor string) (*StaticOracle, error) {
	o := NewStaticOracle()
	for addr, amount := range principals {
		principal, err := uint256.FromDecimal(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid principal amount %q for %s: %w", amount, addr, err)
		}
		o.SetPrincipal(addr, principal)
	}
	if distributor != "" {
		principal, err := uint256.FromDecimal(distributor)
		if err != nil {
			return nil, fmt.Errorf("invalid distributor principal %q: %w", distributor, err)
		}
		o.SetDistributorPrincipal(principal)
	}
	return o, nil
}

func (o *StaticOracle) SetPrincipal(addr string, principal *uint256.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.principals[addr] = principal.Clone()
}

func (o *StaticOracle) SetDistributorPrincipal(principal *uint256.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.distributor = principal.Clone()
}

func (o *StaticOracle) PrincipalOf(addr string) (*uint256.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	principal, ok := o.principals[addr]
	if !ok {
		return uint256.NewInt(0), nil
	}
	return principal.Clone(), nil
}

func (o *StaticOracle) DistributorPrincipal() (*uint256.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.distributor.Clone(), nil
}

func (o *StaticOracle) TotalStakedPrincipal() (*uint256.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	total := o.distributor.Clone()
	for _, principal := range o.principals {
		total.Add(total, principal)
	}
	return total, nil
}
