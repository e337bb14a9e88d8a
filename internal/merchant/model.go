package merchant

import "time"

// Merchant is a payout recipient for point-of-sale charges.
type Merchant struct {
	ID            string
	Name          string
	PayoutAddress string
	CreatedAt     time.Time
}
