package pricing

import "time"

// Price is a product's price within one region, unique per
// (product, region). Amount is in minor currency units.
type Price struct {
	ID        string
	ProductID string
	RegionID  string
	Currency  string
	Amount    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
