package ledger

import "context"

// NetWorth aggregates balances across every account a user owns. The figure
// is derived, never persisted: recomputing on each call keeps it honest
// against concurrent account mutation.
type NetWorth struct {
	store Store
}

func NewNetWorth(st Store) *NetWorth {
	return &NetWorth{store: st}
}

// Calculate sums the balances of all the user's accounts across all banks.
// A user with no accounts is worth 0, not an error.
func (n *NetWorth) Calculate(ctx context.Context, userID uint) (int64, error) {
	sum, err := n.store.SumBalancesForUser(ctx, userID)
	return sum, wrap("net worth", err)
}
