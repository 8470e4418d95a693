package region

import "time"

// Region represents a sales region with its default currency.
type Region struct {
	ID        string
	Code      string
	Name      string
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
