package interfaces

import (
	"github.com/holiman/uint256"
)

// PrincipalOracle is the external staked-balance source. The ledger never
// bookkeeps principal itself; every accrual computation asks the oracle for
// the staked amount backing an account's proportional claim.
type PrincipalOracle interface {
	// PrincipalOf returns the staked principal of a depositor address
	PrincipalOf(addr string) (*uint256.Int, error)
	// DistributorPrincipal returns the total principal tracked by the
	// external proof-based distributor
	DistributorPrincipal() (*uint256.Int, error)
	// TotalStakedPrincipal returns the pool-wide staked principal
	TotalStakedPrincipal() (*uint256.Int, error)
}
