package domain

// EscrowSet maps marketplace escrow wallet addresses to marketplace names
type EscrowSet map[string]string

// DefaultEscrowSet returns the escrows of the supported marketplaces
func DefaultEscrowSet() EscrowSet {
	return EscrowSet{
		MAGIC_EDEN_ESCROW: MARKETPLACE_MAGIC_EDEN,
		TENSOR_ESCROW:     MARKETPLACE_TENSOR,
	}
}

// Contains reports whether addr is a known escrow wallet
func (e EscrowSet) Contains(addr *string) bool {
	if addr == nil {
		return false
	}
	_, ok := e[*addr]
	return ok
}

// Marketplace returns the marketplace owning the escrow addr
func (e EscrowSet) Marketplace(addr string) (string, bool) {
	name, ok := e[addr]
	return name, ok
}
