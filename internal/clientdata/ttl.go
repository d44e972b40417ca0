package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Cash prices are volatile but a same-day snapshot is good enough for
	// value comparison, and every fresh hit saves a quota unit.
	TTLCashPrices = 6 * time.Hour

	// Program balances only move when the user earns or redeems.
	TTLBalances = 24 * time.Hour
)
