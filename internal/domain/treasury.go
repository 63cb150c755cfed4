package domain

// LedgerEntry is one credit recorded against a principal. The registry
// only ever credits; balances are the sum of entries per address. From
// names the paying principal so the forwarded value stays traceable.
type LedgerEntry struct {
	ID      uint64
	Address string
	From    string
	Amount  uint64
	Memo    string
	At      int64
}
