package types

// Account identifies the owner of a checkpoint. The distributor aggregate,
// the pool of rewards owed to depositors tracked by the external proof-based
// claim system, is its own variant instead of a reserved sentinel address,
// so call sites never compare against a magic value.
type Account struct {
	addr        string
	distributor bool
}

// RealAccount wraps a depositor address.
func RealAccount(addr string) Account {
	return Account{addr: addr}
}

// DistributorAccount returns the virtual distributor aggregate.
func DistributorAccount() Account {
	return Account{distributor: true}
}

func (a Account) IsDistributor() bool {
	return a.distributor
}

// Addr returns the depositor address, empty for the distributor aggregate.
func (a Account) Addr() string {
	return a.addr
}

// Valid reports whether the account names a checkpoint owner at all.
func (a Account) Valid() bool {
	return a.distributor || a.addr != ""
}

func (a Account) String() string {
	if a.distributor {
		return "distributor"
	}
	return a.addr
}
