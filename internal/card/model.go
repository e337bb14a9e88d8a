package card

import "time"

const (
	// MinTopUp is the smallest accepted funding amount: one whole unit of the
	// settlement asset at seven decimals.
	MinTopUp int64 = 10_000_000

	// SpendWindow is the rolling daily-limit window in seconds. It is anchored
	// per card to the last charge, not to calendar days.
	SpendWindow int64 = 86_400
)

// Card is a prepaid spending instrument linked to an NFC tag. Two independent
// principals act on it: Owner custodies the funds and controls configuration,
// CardAddress authorizes point-of-sale charges. Balances are integer minor
// units with seven fractional digits.
type Card struct {
	CardID        string
	CardAddress   string
	Owner         string
	Balance       int64
	DailyLimit    int64
	SpentToday    int64
	LastSpendDate int64 // unix seconds of the most recent charge
	IsActive      bool
	PINHash       []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
